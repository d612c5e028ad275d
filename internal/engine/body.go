package engine

import (
	"github.com/kolah/openapi2postman/internal/model"
	orderedmap "github.com/pb33f/ordered-map/v2"
)

// Object is a JSON object whose keys keep insertion order.
type Object = orderedmap.OrderedMap[string, any]

// NewObject creates an empty JSON object that serializes without HTML escaping.
func NewObject() *Object {
	return orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
}

// GenerateBody synthesizes an object from a property list, one key per
// property in declaration order.
func GenerateBody(doc *model.Document, props []model.Property) (*Object, error) {
	return objectBody(doc, props, nil)
}

// GenerateComponentBody synthesizes a value for a named component. The result
// is an *Object, a one-element []any, or nil when the component declares
// neither properties nor items.
func GenerateComponentBody(doc *model.Document, name string) (any, error) {
	return componentBody(doc, name, nil)
}

// SchemaBody synthesizes a value for a request schema that may be a reference
// or an inline definition.
func SchemaBody(doc *model.Document, s *model.Schema) (any, error) {
	return schemaBody(doc, s, nil)
}

func componentBody(doc *model.Document, name string, seen chain) (any, error) {
	s, next, err := lookup(doc, name, seen)
	if err != nil {
		return nil, err
	}
	return schemaBody(doc, s, next)
}

func schemaBody(doc *model.Document, s *model.Schema, seen chain) (any, error) {
	if s == nil {
		return nil, nil
	}
	switch {
	case s.Kind == model.KindRef:
		return componentBody(doc, s.Ref, seen)
	case len(s.Properties) > 0:
		return objectBody(doc, s.Properties, seen)
	case s.Kind == model.KindArray && s.Items != nil:
		item, _, next, err := deref(doc, s.Items, "", seen)
		if err != nil {
			return nil, err
		}
		if item.Kind == model.KindObject {
			obj, err := objectBody(doc, item.Properties, next)
			if err != nil {
				return nil, err
			}
			return []any{obj}, nil
		}
		v, err := placeholder(doc, item, next)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	default:
		return nil, nil
	}
}

func objectBody(doc *model.Document, props []model.Property, seen chain) (*Object, error) {
	obj := NewObject()
	for _, p := range props {
		v, err := placeholder(doc, p.Schema, seen)
		if err != nil {
			return nil, err
		}
		obj.Set(p.Name, v)
	}
	return obj, nil
}

// placeholder returns the type-appropriate stand-in value for one property.
func placeholder(doc *model.Document, s *model.Schema, seen chain) (any, error) {
	if s == nil {
		return "string", nil
	}
	switch s.Kind {
	case model.KindRef:
		return componentBody(doc, s.Ref, seen)
	case model.KindObject:
		return objectBody(doc, s.Properties, seen)
	case model.KindArray:
		if s.Items != nil && s.Items.Kind == model.KindRef {
			item, err := componentBody(doc, s.Items.Ref, seen)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		return []any{}, nil
	}

	switch s.Type {
	case model.TypeBoolean:
		return false, nil
	// integer is a numeric kind here, not part of the "string" fallback.
	case model.TypeNumber, model.TypeInteger:
		return 0, nil
	default:
		return "string", nil
	}
}

// cloneValue deep-copies a JSON value so variants never share containers.
func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		c := NewObject()
		for k, val := range t.FromOldest() {
			c.Set(k, cloneValue(val))
		}
		return c
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, val := range t {
			c[k] = cloneValue(val)
		}
		return c
	case []any:
		c := make([]any, len(t))
		for i, val := range t {
			c[i] = cloneValue(val)
		}
		return c
	default:
		return v
	}
}

// withField returns a copy of base with key set to v. An existing key keeps its position.
func withField(base *Object, key string, v any) *Object {
	c := cloneValue(base).(*Object)
	c.Set(key, v)
	return c
}

// withoutField returns a copy of base lacking key.
func withoutField(base *Object, key string) *Object {
	c := cloneValue(base).(*Object)
	c.Delete(key)
	return c
}
