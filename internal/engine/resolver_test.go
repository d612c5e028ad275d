package engine

import (
	"errors"
	"testing"

	"github.com/kolah/openapi2postman/internal/model"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	doc := shopDocument()

	tests := []struct {
		name   string
		schema *model.Schema
		want   string
	}{
		{
			name:   "primitive unchanged",
			schema: str(),
			want:   `{"type":"string"}`,
		},
		{
			name:   "reference replaced by component",
			schema: model.RefTo("NewOrder"),
			want:   `{"type":"object","properties":{"name":{"type":"string"},"price":{"type":"number"}},"required":["name","price"]}`,
		},
		{
			name:   "alias followed",
			schema: model.RefTo("Alias"),
			want:   `{"type":"object","properties":{"name":{"type":"string"},"price":{"type":"number"}},"required":["name","price"]}`,
		},
		{
			name:   "array items resolved",
			schema: model.ArrayOf(model.RefTo("Line")),
			want:   `{"type":"array","items":{"type":"object","properties":{"sku":{"type":"string"},"quantity":{"type":"integer"}},"required":["sku"]}}`,
		},
		{
			name:   "array inside properties resolved",
			schema: model.Object(nil, model.Prop("lines", model.ArrayOf(model.RefTo("Line")))),
			want:   `{"type":"object","properties":{"lines":{"type":"array","items":{"type":"object","properties":{"sku":{"type":"string"},"quantity":{"type":"integer"}},"required":["sku"]}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(doc, tt.schema)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, compactJSON(t, got))
			require.False(t, got.HasRef())
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	doc := shopDocument()

	once, err := Resolve(doc, model.RefTo("Order"))
	require.NoError(t, err)
	require.False(t, once.HasRef())

	twice, err := Resolve(doc, once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestResolveDoesNotMutateDocument(t *testing.T) {
	doc := shopDocument()

	_, err := Resolve(doc, model.RefTo("Order"))
	require.NoError(t, err)
	require.Equal(t, model.KindRef, doc.Component("Order").Property("billing").Kind)
}

func TestResolveRepeatedSiblingReferences(t *testing.T) {
	doc := shopDocument()

	got, err := Resolve(doc, model.RefTo("Order"))
	require.NoError(t, err)
	require.Equal(t, got.Property("billing"), got.Property("shipping"))
}

func TestResolveUnknownComponent(t *testing.T) {
	_, err := Resolve(shopDocument(), model.Object(nil, model.Prop("x", model.RefTo("Missing"))))

	var unknown *UnknownComponentError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "Missing", unknown.Component)
}

func TestResolveCycle(t *testing.T) {
	doc := &model.Document{Components: []model.Component{
		component("A", model.Object(nil, model.Prop("b", model.RefTo("B")))),
		component("B", model.Object(nil, model.Prop("a", model.RefTo("A")))),
	}}

	_, err := Resolve(doc, model.RefTo("A"))

	var cyclic *CyclicSchemaError
	require.True(t, errors.As(err, &cyclic))
	require.Equal(t, []string{"A", "B", "A"}, cyclic.Chain)
	require.Contains(t, err.Error(), "A -> B -> A")
}

func TestResolveNil(t *testing.T) {
	got, err := Resolve(shopDocument(), nil)
	require.NoError(t, err)
	require.Nil(t, got)
}
