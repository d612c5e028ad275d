package engine

import "github.com/kolah/openapi2postman/internal/model"

// Resolve returns a deep copy of s with every component reference inlined.
// The result contains no model.KindRef node at any depth.
func Resolve(doc *model.Document, s *model.Schema) (*model.Schema, error) {
	return resolve(doc, s, nil)
}

func resolve(doc *model.Document, s *model.Schema, seen chain) (*model.Schema, error) {
	if s == nil {
		return nil, nil
	}

	switch s.Kind {
	case model.KindRef:
		target, next, err := lookup(doc, s.Ref, seen)
		if err != nil {
			return nil, err
		}
		return resolve(doc, target, next)

	case model.KindObject:
		out := s.Clone()
		for i, p := range s.Properties {
			r, err := resolve(doc, p.Schema, seen)
			if err != nil {
				return nil, err
			}
			out.Properties[i].Schema = r
		}
		return out, nil

	case model.KindArray:
		out := s.Clone()
		items, err := resolve(doc, s.Items, seen)
		if err != nil {
			return nil, err
		}
		out.Items = items
		return out, nil

	default:
		return s.Clone(), nil
	}
}

// lookup finds a component and extends the chain with it.
func lookup(doc *model.Document, name string, seen chain) (*model.Schema, chain, error) {
	target := doc.Component(name)
	if target == nil {
		return nil, nil, &UnknownComponentError{Component: name}
	}
	next, err := seen.push(name)
	if err != nil {
		return nil, nil, err
	}
	return target, next, nil
}

// deref follows reference aliases until a concrete schema is reached.
// label names the last component entered, or fallback for inline schemas.
func deref(doc *model.Document, s *model.Schema, fallback string, seen chain) (*model.Schema, string, chain, error) {
	label := fallback
	for s != nil && s.Kind == model.KindRef {
		target, next, err := lookup(doc, s.Ref, seen)
		if err != nil {
			return nil, "", nil, err
		}
		label, s, seen = s.Ref, target, next
	}
	return s, label, seen, nil
}
