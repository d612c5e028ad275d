package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/kolah/openapi2postman/internal/model"
	orderedmap "github.com/pb33f/ordered-map/v2"
)

// UnresolvedRefExtension replaces a $ref to an undeclared schema component.
// Its value is the missing component name.
const UnresolvedRefExtension = "x-unresolved-ref"

type jsonObject = orderedmap.OrderedMap[string, any]

// markUnresolvedRefs rewrites every schema reference whose component is not
// declared into an UnresolvedRefExtension, so the model still builds and the
// reference fails only where a collection actually needs it. The input is
// returned unchanged when every reference resolves.
func markUnresolvedRefs(data []byte) ([]byte, []string, error) {
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, nil, err
	}
	root, err := decodeValue(value, typ)
	if err != nil {
		return nil, nil, err
	}
	obj, ok := root.(*jsonObject)
	if !ok {
		return data, nil, nil
	}

	var missing []string
	markRefs(obj, declaredSchemas(obj), &missing)
	if len(missing) == 0 {
		return data, nil, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return nil, nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), missing, nil
}

func declaredSchemas(root *jsonObject) map[string]bool {
	declared := make(map[string]bool)
	components, _ := root.Get("components")
	c, ok := components.(*jsonObject)
	if !ok {
		return declared
	}
	schemas, _ := c.Get("schemas")
	s, ok := schemas.(*jsonObject)
	if !ok {
		return declared
	}
	for name := range s.KeysFromOldest() {
		declared[name] = true
	}
	return declared
}

func markRefs(v any, declared map[string]bool, missing *[]string) {
	switch node := v.(type) {
	case *jsonObject:
		if ref, ok := node.Get("$ref"); ok {
			if s, ok := ref.(string); ok && strings.HasPrefix(s, model.ComponentPrefix) {
				name := model.ComponentName(s)
				if !declared[name] {
					node.Delete("$ref")
					node.Set(UnresolvedRefExtension, name)
					if !slices.Contains(*missing, name) {
						*missing = append(*missing, name)
					}
				}
			}
		}
		for _, child := range node.FromOldest() {
			markRefs(child, declared, missing)
		}
	case []any:
		for _, child := range node {
			markRefs(child, declared, missing)
		}
	}
}
