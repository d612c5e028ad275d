package loader

import (
	"strings"

	"github.com/kolah/openapi2postman/internal/model"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"go.yaml.in/yaml/v4"
)

type transformer struct {
	componentSchemas map[*base.Schema]string
}

// Transform flattens the libopenapi model into the internal document model.
// Component references are kept as model.KindRef nodes; nothing is inlined here.
func Transform(result *Result) (*model.Document, error) {
	doc := result.Document.Model

	t := &transformer{
		componentSchemas: make(map[*base.Schema]string),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			if schemaProxy.GetReference() != "" {
				continue
			}
			t.componentSchemas[schemaProxy.Schema()] = name
		}
	}

	out := &model.Document{
		OpenAPI: result.Version,
		Info:    transformInfo(doc.Info),
		Servers: transformServers(doc.Servers),
	}

	if doc.Components != nil && doc.Components.Schemas != nil {
		for name, schemaProxy := range doc.Components.Schemas.FromOldest() {
			var schema *model.Schema
			if ref := schemaProxy.GetReference(); ref != "" {
				schema = model.RefTo(model.ComponentName(ref))
			} else {
				schema = t.transformSchema(schemaProxy.Schema())
			}
			out.Components = append(out.Components, model.Component{Name: name, Schema: schema})
		}
	}

	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for pathStr, pathItem := range doc.Paths.PathItems.FromOldest() {
			out.Paths = append(out.Paths, t.transformPath(pathStr, pathItem))
		}
	}

	return out, nil
}

func transformInfo(info *base.Info) model.Info {
	if info == nil {
		return model.Info{}
	}
	return model.Info{
		Title:       info.Title,
		Description: info.Description,
		Version:     info.Version,
	}
}

func transformServers(servers []*v3.Server) []model.Server {
	var result []model.Server
	for _, s := range servers {
		result = append(result, model.Server{
			URL:         s.URL,
			Description: s.Description,
		})
	}
	return result
}

func (t *transformer) transformPath(pathStr string, pathItem *v3.PathItem) model.Path {
	path := model.Path{Path: pathStr}

	// Use a slice for deterministic ordering
	methods := []struct {
		method model.Method
		op     *v3.Operation
	}{
		{model.MethodGet, pathItem.Get},
		{model.MethodPost, pathItem.Post},
		{model.MethodPut, pathItem.Put},
		{model.MethodPatch, pathItem.Patch},
		{model.MethodDelete, pathItem.Delete},
		{model.MethodHead, pathItem.Head},
		{model.MethodOptions, pathItem.Options},
		{model.MethodTrace, pathItem.Trace},
	}

	for _, m := range methods {
		if m.op == nil {
			continue
		}
		path.Operations = append(path.Operations, t.transformOperation(m.method, pathStr, m.op))
	}

	return path
}

func (t *transformer) transformOperation(method model.Method, path string, op *v3.Operation) model.Operation {
	operation := model.Operation{
		ID:          op.OperationId,
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
	}

	if op.RequestBody != nil {
		operation.RequestBody = &model.RequestBody{
			Description: op.RequestBody.Description,
			Required:    boolPtr(op.RequestBody.Required),
			Schema:      t.jsonContentSchema(op.RequestBody.Content),
		}
	}

	if op.Responses != nil && op.Responses.Codes != nil {
		for code, resp := range op.Responses.Codes.FromOldest() {
			operation.Responses = append(operation.Responses, model.Response{
				StatusCode:  code,
				Description: resp.Description,
				Schema:      t.jsonContentSchema(resp.Content),
			})
		}
	}

	return operation
}

func (t *transformer) jsonContentSchema(content *orderedmap.Map[string, *v3.MediaType]) *model.Schema {
	if content == nil {
		return nil
	}
	for mediaType, mt := range content.FromOldest() {
		if !strings.HasPrefix(mediaType, model.JSONMediaType) || mt.Schema == nil {
			continue
		}
		return t.transformSchemaProxy(mt.Schema)
	}
	return nil
}

func (t *transformer) transformSchemaProxy(proxy *base.SchemaProxy) *model.Schema {
	if proxy == nil {
		return nil
	}

	if ref := proxy.GetReference(); strings.HasPrefix(ref, model.ComponentPrefix) {
		return model.RefTo(model.ComponentName(ref))
	}

	s := proxy.Schema()
	if name, ok := t.componentSchemas[s]; ok {
		return model.RefTo(name)
	}
	return t.transformSchema(s)
}

func (t *transformer) transformSchema(s *base.Schema) *model.Schema {
	if s == nil {
		return nil
	}
	if name, ok := unresolvedRef(s); ok {
		return model.RefTo(name)
	}

	schema := &model.Schema{
		Description: s.Description,
		Format:      s.Format,
		Nullable:    boolPtr(s.Nullable),
		Default:     nodeValue(s.Default),
		Example:     nodeValue(s.Example),
	}

	if len(s.Type) > 0 {
		schema.Type = model.SchemaType(s.Type[0])
	}

	for _, e := range s.Enum {
		schema.Enum = append(schema.Enum, nodeValue(e))
	}

	if s.Properties != nil {
		for propName, propProxy := range s.Properties.FromOldest() {
			schema.Properties = append(schema.Properties, model.Property{
				Name:   propName,
				Schema: t.transformSchemaProxy(propProxy),
			})
		}
	}

	schema.Required = s.Required

	if s.Items != nil && s.Items.A != nil {
		schema.Items = t.transformSchemaProxy(s.Items.A)
	}

	schema.Kind = classify(schema)

	return schema
}

// unresolvedRef reports a reference marked as dangling while loading.
func unresolvedRef(s *base.Schema) (string, bool) {
	if s.Extensions == nil {
		return "", false
	}
	node, ok := s.Extensions.Get(UnresolvedRefExtension)
	if !ok || node == nil {
		return "", false
	}
	return node.Value, true
}

// classify decides the union branch once so later stages never probe for keys.
func classify(s *model.Schema) model.SchemaKind {
	switch {
	case s.Type == model.TypeObject, s.Type == "" && len(s.Properties) > 0:
		return model.KindObject
	case s.Type == model.TypeArray, s.Type == "" && s.Items != nil:
		return model.KindArray
	default:
		return model.KindPrimitive
	}
}

// nodeValue decodes a literal such as an enum member or example into a plain Go value.
func nodeValue(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return v
}

func boolPtr(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
