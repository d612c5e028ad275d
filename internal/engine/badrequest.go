package engine

import (
	"github.com/kolah/openapi2postman/internal/model"
	"github.com/kolah/openapi2postman/internal/postman"
)

const (
	wrongTypeText   = "invalid type"
	wrongTypeNumber = 10
	inlineLabel     = "requestBody"
)

// Variant is one invalid request body and the description naming its violation.
type Variant struct {
	Description string
	Body        any
}

// BadRequests builds one request per violation of the request schema's
// required fields. validBody is the canonical body each violation starts from.
func BadRequests(doc *model.Document, requestSchema *model.Schema, validBody any, tmpl RequestTemplate) ([]*postman.Item, error) {
	variants, err := Violations(doc, requestSchema, validBody)
	if err != nil {
		return nil, err
	}

	items := make([]*postman.Item, 0, len(variants))
	for _, v := range variants {
		item, err := BuildRequest(tmpl, v.Description, v.Body)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Violations lists the invalid bodies derived from validBody, per required
// field in declaration order: missing, wrong type, empty, then the nested
// violations of a referenced sub-schema.
func Violations(doc *model.Document, requestSchema *model.Schema, validBody any) ([]Variant, error) {
	target, label, seen, err := deref(doc, requestSchema, inlineLabel, nil)
	if err != nil {
		return nil, err
	}
	return violations(doc, target, label, validBody, seen)
}

func violations(doc *model.Document, target *model.Schema, label string, validBody any, seen chain) ([]Variant, error) {
	if target == nil || len(target.Required) == 0 {
		return nil, nil
	}

	base, ok := validBody.(*Object)
	if !ok {
		return nil, &MalformedDocumentError{Location: label, Reason: "required fields declared on a schema without an object body"}
	}

	var out []Variant
	for _, field := range target.Required {
		prop := target.Property(field)
		if prop == nil {
			return nil, &UnknownComponentError{Component: label, Property: field}
		}

		kind, err := fieldType(doc, label, field, prop, seen)
		if err != nil {
			return nil, err
		}

		out = append(out,
			Variant{Description: "missing " + field, Body: withoutField(base, field)},
			Variant{Description: field + " " + wrongTypeText, Body: withField(base, field, wrongTypeValue(kind))},
		)
		if empty, ok := emptyValue(kind); ok {
			out = append(out, Variant{Description: field + " empty", Body: withField(base, field, empty)})
		}

		ref, wrap := nestedRef(prop)
		if ref == "" {
			continue
		}
		nested, err := nestedViolations(doc, ref, seen)
		if err != nil {
			return nil, err
		}
		for _, n := range nested {
			v := n.Body
			if wrap {
				v = []any{n.Body}
			}
			out = append(out, Variant{Description: n.Description, Body: withField(base, field, v)})
		}
	}
	return out, nil
}

// nestedViolations computes the violations of a referenced component against
// its own generated body.
func nestedViolations(doc *model.Document, ref string, seen chain) ([]Variant, error) {
	sub, label, next, err := deref(doc, model.RefTo(ref), ref, seen)
	if err != nil {
		return nil, err
	}
	if len(sub.Required) == 0 {
		return nil, nil
	}
	body, err := schemaBody(doc, sub, next)
	if err != nil {
		return nil, err
	}
	return violations(doc, sub, label, body, next)
}

// fieldType reports the JSON kind a required property is expected to hold.
// A reference takes the kind of its target.
func fieldType(doc *model.Document, label, field string, prop *model.Schema, seen chain) (model.SchemaType, error) {
	if prop.Kind == model.KindRef {
		target, _, _, err := deref(doc, prop, label, seen)
		if err != nil {
			return "", err
		}
		prop = target
	}

	switch prop.Kind {
	case model.KindObject:
		return model.TypeObject, nil
	case model.KindArray:
		return model.TypeArray, nil
	}
	if prop.Type == "" {
		return "", &MalformedDocumentError{Location: label + "." + field, Reason: "required property declares no type"}
	}
	return prop.Type, nil
}

// nestedRef returns the component a property points at, directly or through
// its array items. wrap is true for the array form.
func nestedRef(prop *model.Schema) (ref string, wrap bool) {
	switch {
	case prop.Kind == model.KindRef:
		return prop.Ref, false
	case prop.Kind == model.KindArray && prop.Items != nil && prop.Items.Kind == model.KindRef:
		return prop.Items.Ref, true
	default:
		return "", false
	}
}

// wrongTypeValue picks a value of another primitive kind. integer counts as
// numeric, so it takes the text value like number does.
func wrongTypeValue(t model.SchemaType) any {
	switch t {
	case model.TypeBoolean, model.TypeNumber, model.TypeInteger, model.TypeArray, model.TypeObject:
		return wrongTypeText
	default:
		return wrongTypeNumber
	}
}

func emptyValue(t model.SchemaType) (any, bool) {
	switch t {
	case model.TypeString:
		return "", true
	case model.TypeArray:
		return []any{}, true
	case model.TypeObject:
		return NewObject(), true
	default:
		return nil, false
	}
}
