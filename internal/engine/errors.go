package engine

import (
	"fmt"
	"strings"
)

// UnknownComponentError reports a $ref, or a required property, that names
// something absent from the document.
type UnknownComponentError struct {
	Component string
	Property  string
}

func (e *UnknownComponentError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("component %q has no property %q", e.Component, e.Property)
	}
	return fmt.Sprintf("unknown component %q", e.Component)
}

// CyclicSchemaError reports a component reached again within its own resolution chain.
type CyclicSchemaError struct {
	Chain []string
}

func (e *CyclicSchemaError) Error() string {
	return "cyclic schema reference: " + strings.Join(e.Chain, " -> ")
}

// InvalidEnvironmentError reports an explicitly requested environment that no
// server description matches.
type InvalidEnvironmentError struct {
	Environment string
}

func (e *InvalidEnvironmentError) Error() string {
	return fmt.Sprintf("environment %q is not defined in the document servers", e.Environment)
}

// MalformedDocumentError reports a structural assumption the document breaks,
// such as an operation without tags or a required property without a type.
type MalformedDocumentError struct {
	Location string
	Reason   string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document at %s: %s", e.Location, e.Reason)
}

// chain is the list of components entered on the way to the current node.
type chain []string

func (c chain) push(name string) (chain, error) {
	for _, seen := range c {
		if seen == name {
			cycle := append(append([]string(nil), c...), name)
			return nil, &CyclicSchemaError{Chain: cycle}
		}
	}
	return append(c[:len(c):len(c)], name), nil
}
