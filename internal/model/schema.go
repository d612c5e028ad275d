package model

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/pb33f/ordered-map/v2"
)

// ComponentPrefix is the JSON pointer prefix of every component schema reference.
const ComponentPrefix = "#/components/schemas/"

// SchemaKind tags which branch of the Schema union is populated.
type SchemaKind int

const (
	KindPrimitive SchemaKind = iota
	KindRef
	KindObject
	KindArray
)

func (k SchemaKind) String() string {
	switch k {
	case KindRef:
		return "ref"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "primitive"
	}
}

type SchemaType string

const (
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeArray   SchemaType = "array"
	TypeObject  SchemaType = "object"
)

// Schema is a JSON Schema fragment classified once at load time.
//
// Exactly one branch is meaningful for a given Kind:
//   - KindRef: Ref holds the component name
//   - KindObject: Properties and Required
//   - KindArray: Items
//   - KindPrimitive: Type (empty when the document declares none)
type Schema struct {
	Kind SchemaKind
	Type SchemaType
	Ref  string

	Properties []Property
	Required   []string
	Items      *Schema

	Description string
	Format      string
	Nullable    bool
	Enum        []any
	Default     any
	Example     any
}

type Property struct {
	Name   string
	Schema *Schema
}

// RefTo builds a reference schema to the named component.
func RefTo(name string) *Schema {
	return &Schema{Kind: KindRef, Ref: name}
}

// Object builds an object schema with properties in the given order.
func Object(required []string, props ...Property) *Schema {
	return &Schema{Kind: KindObject, Type: TypeObject, Properties: props, Required: required}
}

// ArrayOf builds an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Kind: KindArray, Type: TypeArray, Items: items}
}

// Primitive builds a scalar schema of the given type.
func Primitive(t SchemaType) *Schema {
	return &Schema{Kind: KindPrimitive, Type: t}
}

// Prop is shorthand for a named property.
func Prop(name string, s *Schema) Property {
	return Property{Name: name, Schema: s}
}

// Property returns the named property schema, or nil.
func (s *Schema) Property(name string) *Schema {
	if s == nil {
		return nil
	}
	for i := range s.Properties {
		if s.Properties[i].Name == name {
			return s.Properties[i].Schema
		}
	}
	return nil
}

// HasRef reports whether any node at any depth is a reference.
func (s *Schema) HasRef() bool {
	if s == nil {
		return false
	}
	if s.Kind == KindRef {
		return true
	}
	for _, p := range s.Properties {
		if p.Schema.HasRef() {
			return true
		}
	}
	return s.Items.HasRef()
}

// Clone returns a deep copy.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := *s
	if s.Properties != nil {
		c.Properties = make([]Property, len(s.Properties))
		for i, p := range s.Properties {
			c.Properties[i] = Property{Name: p.Name, Schema: p.Schema.Clone()}
		}
	}
	if s.Required != nil {
		c.Required = append([]string(nil), s.Required...)
	}
	if s.Enum != nil {
		c.Enum = append([]any(nil), s.Enum...)
	}
	c.Items = s.Items.Clone()
	return &c
}

// MarshalJSON renders the schema back into JSON Schema keywords, keeping
// property declaration order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return s.jsonSchema().MarshalJSON()
}

func (s *Schema) jsonSchema() *orderedmap.OrderedMap[string, any] {
	m := orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
	if s == nil {
		return m
	}
	if s.Kind == KindRef {
		m.Set("$ref", ComponentPrefix+s.Ref)
		return m
	}
	if s.Type != "" {
		m.Set("type", string(s.Type))
	}
	if s.Description != "" {
		m.Set("description", s.Description)
	}
	if s.Format != "" {
		m.Set("format", s.Format)
	}
	if s.Nullable {
		m.Set("nullable", true)
	}
	if len(s.Enum) > 0 {
		m.Set("enum", s.Enum)
	}
	if s.Default != nil {
		m.Set("default", s.Default)
	}
	if s.Example != nil {
		m.Set("example", s.Example)
	}
	if s.Kind == KindObject && len(s.Properties) > 0 {
		props := orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
		for _, p := range s.Properties {
			props.Set(p.Name, p.Schema.jsonSchema())
		}
		m.Set("properties", props)
	}
	if len(s.Required) > 0 {
		m.Set("required", s.Required)
	}
	if s.Kind == KindArray && s.Items != nil {
		m.Set("items", s.Items.jsonSchema())
	}
	return m
}

// CompactJSON renders the schema as a single-line JSON literal without HTML escaping.
func (s *Schema) CompactJSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
