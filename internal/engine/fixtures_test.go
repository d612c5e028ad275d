package engine

import (
	"encoding/json"
	"testing"

	"github.com/kolah/openapi2postman/internal/model"
	"github.com/stretchr/testify/require"
)

func component(name string, s *model.Schema) model.Component {
	return model.Component{Name: name, Schema: s}
}

func str() *model.Schema { return model.Primitive(model.TypeString) }
func num() *model.Schema { return model.Primitive(model.TypeNumber) }

// shopDocument covers references, nested required fields and array items.
func shopDocument() *model.Document {
	return &model.Document{
		OpenAPI: model.SupportedVersion,
		Info:    model.Info{Title: "Shop"},
		Servers: []model.Server{
			{URL: "https://api.example.com", Description: "Production"},
			{URL: "http://localhost:8080/", Description: "Local"},
		},
		Components: []model.Component{
			component("Order", model.Object(nil,
				model.Prop("id", model.Primitive(model.TypeInteger)),
				model.Prop("billing", model.RefTo("Address")),
				model.Prop("shipping", model.RefTo("Address")),
				model.Prop("lines", model.ArrayOf(model.RefTo("Line"))),
			)),
			component("Address", model.Object([]string{"city"},
				model.Prop("street", str()),
				model.Prop("city", str()),
			)),
			component("Line", model.Object([]string{"sku"},
				model.Prop("sku", str()),
				model.Prop("quantity", model.Primitive(model.TypeInteger)),
			)),
			component("NewOrder", model.Object([]string{"name", "price"},
				model.Prop("name", str()),
				model.Prop("price", num()),
			)),
			component("Orders", model.ArrayOf(model.RefTo("Order"))),
			component("Tags", model.ArrayOf(str())),
			component("Alias", model.RefTo("NewOrder")),
			component("Opaque", model.Primitive(model.TypeObject)),
		},
	}
}

func withPaths(doc *model.Document, paths ...model.Path) *model.Document {
	doc.Paths = paths
	return doc
}

func compactJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
