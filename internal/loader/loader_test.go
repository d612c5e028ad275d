package loader

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/kolah/openapi2postman/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    string
		format  bool
		version string
	}{
		{name: "supported", data: `{"openapi":"3.0.0"}`, want: "3.0.0"},
		{name: "not JSON", data: `openapi: 3.0.0`, format: true},
		{name: "missing key", data: `{"swagger":"2.0"}`, format: true},
		{name: "non string", data: `{"openapi":3}`, format: true},
		{name: "other version", data: `{"openapi":"3.1.0"}`, version: "3.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckVersion([]byte(tt.data))
			switch {
			case tt.format:
				var formatErr *InputFormatError
				require.True(t, errors.As(err, &formatErr))
			case tt.version != "":
				var versionErr *UnsupportedVersionError
				require.True(t, errors.As(err, &versionErr))
				require.Equal(t, tt.version, versionErr.Version)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseRejectsBeforeParsing(t *testing.T) {
	_, _, err := Parse([]byte(`{"info":{"title":"x"},"paths":{"/a":{"get":{"responses":{"200":{"$ref":"#/nowhere"}}}}}}`))

	var formatErr *InputFormatError
	require.True(t, errors.As(err, &formatErr))
	require.Equal(t, "missing openapi key", formatErr.Reason)
}

func TestLoadFileTransforms(t *testing.T) {
	result, err := LoadFile(filepath.Join("testdata", "shop.json"))
	require.NoError(t, err)
	require.Equal(t, "3.0.0", result.Version)

	doc, err := Transform(result)
	require.NoError(t, err)

	require.Equal(t, "Shop", doc.Info.Title)
	url, ok := doc.ServerURL("Staging")
	require.True(t, ok)
	require.Equal(t, "https://staging.example.com", url)

	require.Len(t, doc.Paths, 2)
	require.Equal(t, "/orders", doc.Paths[0].Path)
	require.Equal(t, 3, doc.OperationCount())

	orders := doc.Paths[0].Operations
	require.Equal(t, model.MethodGet, orders[0].Method)
	require.Equal(t, model.MethodPost, orders[1].Method)

	create := orders[1]
	require.Equal(t, []string{"Orders"}, create.Tags)
	require.Equal(t, model.RefTo("NewOrder"), create.RequestSchema())
	require.Equal(t, []string{"201", "400"}, []string{create.Responses[0].StatusCode, create.Responses[1].StatusCode})
	require.Nil(t, create.Responses[0].Schema)

	list := orders[0].Responses[0].Schema
	require.Equal(t, model.KindArray, list.Kind)
	require.Equal(t, model.RefTo("Order"), list.Items)

	customer := doc.Paths[1].Operations[0]
	require.Equal(t, "Fetch a customer", customer.DisplayName())
	require.Equal(t, model.RefTo("Customer"), customer.Responses[0].Schema)
}

func TestTransformComponents(t *testing.T) {
	result, err := LoadFile(filepath.Join("testdata", "shop.json"))
	require.NoError(t, err)
	doc, err := Transform(result)
	require.NoError(t, err)

	var names []string
	for _, c := range doc.Components {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"NewOrder", "Order", "Customer", "Line", "Tags"}, names)

	newOrder := doc.Component("NewOrder")
	require.Equal(t, model.KindObject, newOrder.Kind)
	require.Equal(t, []string{"name", "price"}, newOrder.Required)
	require.Equal(t, "Widget", newOrder.Property("name").Example)
	require.Equal(t, "double", newOrder.Property("price").Format)
	require.Equal(t, []any{"open", "closed"}, newOrder.Property("status").Enum)

	order := doc.Component("#/components/schemas/Order")
	require.Equal(t, model.RefTo("Customer"), order.Property("customer"))
	require.Equal(t, model.KindArray, order.Property("lines").Kind)
	require.Equal(t, model.RefTo("Line"), order.Property("lines").Items)

	customer := doc.Component("Customer")
	require.Equal(t, model.KindObject, customer.Kind, "properties without a type classify as object")
	require.True(t, customer.Property("email").Nullable)

	tags := doc.Component("Tags")
	require.Equal(t, model.KindArray, tags.Kind, "items without a type classify as array")
}

func TestLoadBytesWarnsWithoutPaths(t *testing.T) {
	result, err := LoadBytes([]byte(`{"openapi":"3.0.0","info":{"title":"Empty","version":"1"},"paths":{}}`))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
}

const danglingRefDocument = `{
  "openapi": "3.0.0",
  "info": {"title": "Dangling", "version": "1"},
  "paths": {
    "/orders": {"get": {"tags": ["Orders"], "responses": {"200": {"description": "OK",
      "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Order"}}}}}}},
    "/broken": {"get": {"tags": ["Broken"], "responses": {"200": {"description": "OK",
      "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Bad"}}}}}}}
  },
  "components": {"schemas": {
    "Order": {"type": "object", "properties": {"id": {"type": "string"}}},
    "Bad": {"type": "object", "properties": {"x": {"$ref": "#/components/schemas/Missing"}}}
  }}
}`

func TestParseKeepsDanglingReferences(t *testing.T) {
	doc, warnings, err := Parse([]byte(danglingRefDocument))
	require.NoError(t, err)
	require.Contains(t, warnings, `schema component "Missing" is referenced but not declared`)

	bad := doc.Component("Bad")
	require.NotNil(t, bad)
	x := bad.Property("x")
	require.Equal(t, model.KindRef, x.Kind)
	require.Equal(t, "Missing", x.Ref)

	g, err := engine.New(engine.Options{})
	require.NoError(t, err)

	t.Run("unused component does not block generation", func(t *testing.T) {
		used := *doc
		used.Paths = doc.Paths[:1]
		result, err := g.Generate(&used)
		require.NoError(t, err)
		require.Equal(t, 1, result.Metrics.TestRequests)
	})

	t.Run("used component reports the missing name", func(t *testing.T) {
		_, err := g.Generate(doc)

		var unknown *engine.UnknownComponentError
		require.True(t, errors.As(err, &unknown))
		require.Equal(t, "Missing", unknown.Component)
		require.Contains(t, err.Error(), "GET /broken")
	})
}

func TestMarkUnresolvedRefsLeavesValidDocuments(t *testing.T) {
	data := []byte(`{"openapi":"3.0.0","components":{"schemas":{"A":{"$ref":"#/components/schemas/B"},"B":{"type":"string"}}}}`)
	got, missing, err := markUnresolvedRefs(data)
	require.NoError(t, err)
	require.Empty(t, missing)
	require.Equal(t, data, got)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSuccessBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"zeta":{"b":1,"a":[true,null,"xé"]},"alpha":1.50}`), 0o644))

	body, err := LoadSuccessBody(path)
	require.NoError(t, err)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	require.Equal(t, `{"zeta":{"b":1,"a":[true,null,"xé"]},"alpha":1.50}`, string(out))
}

func TestDecodeOrderedErrors(t *testing.T) {
	_, err := DecodeOrdered([]byte(`{"a":`))
	var formatErr *InputFormatError
	require.True(t, errors.As(err, &formatErr))

	v, err := DecodeOrdered([]byte(` [ ] `))
	require.NoError(t, err)
	require.Equal(t, []any{}, v)
}
