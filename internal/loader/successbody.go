package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/buger/jsonparser"
	orderedmap "github.com/pb33f/ordered-map/v2"
)

// LoadSuccessBody reads a JSON file used verbatim as the body of success
// requests. Object key order is preserved at every depth.
func LoadSuccessBody(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading success body: %w", err)
	}
	return DecodeOrdered(data)
}

// DecodeOrdered decodes a JSON document into insertion-ordered objects,
// []any arrays and json.Number numbers.
func DecodeOrdered(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, &InputFormatError{Reason: "success body is not valid JSON"}
	}
	value, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, &InputFormatError{Reason: "reading success body", Err: err}
	}
	return decodeValue(value, typ)
}

func decodeValue(data []byte, typ jsonparser.ValueType) (any, error) {
	switch typ {
	case jsonparser.Object:
		obj := orderedmap.New[string, any](orderedmap.WithDisableHTMLEscape[string, any]())
		err := jsonparser.ObjectEach(data, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			k, err := jsonparser.ParseString(key)
			if err != nil {
				return err
			}
			v, err := decodeValue(value, vt)
			if err != nil {
				return err
			}
			obj.Set(k, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil

	case jsonparser.Array:
		out := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(data, func(value []byte, vt jsonparser.ValueType, _ int, _ error) {
			if inner != nil {
				return
			}
			v, err := decodeValue(value, vt)
			if err != nil {
				inner = err
				return
			}
			out = append(out, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return out, nil

	case jsonparser.String:
		return jsonparser.ParseString(data)
	case jsonparser.Number:
		return json.Number(data), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %q", data)
	}
}
