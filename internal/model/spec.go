package model

import "strings"

// SupportedVersion is the only OpenAPI version accepted by the loader.
const SupportedVersion = "3.0.0"

type Document struct {
	OpenAPI    string
	Info       Info
	Servers    []Server
	Paths      []Path
	Components []Component
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type Server struct {
	URL         string
	Description string
}

type Path struct {
	Path       string
	Operations []Operation
}

// Component is a named entry of components.schemas.
type Component struct {
	Name   string
	Schema *Schema
}

// ComponentName strips the pointer prefix from a $ref value
// (e.g., "#/components/schemas/User" -> "User").
func ComponentName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

// Component returns a component schema by name or by its $ref path.
// Returns nil if the schema is not found.
func (d *Document) Component(ref string) *Schema {
	name := ComponentName(ref)
	for i := range d.Components {
		if d.Components[i].Name == name {
			return d.Components[i].Schema
		}
	}
	return nil
}

// ServerURL returns the URL of the server whose description equals environment.
func (d *Document) ServerURL(environment string) (string, bool) {
	for _, s := range d.Servers {
		if s.Description == environment {
			return s.URL, true
		}
	}
	return "", false
}

// OperationCount returns the number of operations across all paths.
func (d *Document) OperationCount() int {
	n := 0
	for _, p := range d.Paths {
		n += len(p.Operations)
	}
	return n
}
