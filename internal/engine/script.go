package engine

import (
	"strconv"
	"text/template"

	"github.com/kolah/openapi2postman/internal/model"
	"github.com/kolah/openapi2postman/internal/templates"
	embeddedtmpl "github.com/kolah/openapi2postman/templates"
)

// TestScriptTemplate is the template name the script builder renders.
const TestScriptTemplate = "postman/test_script.tmpl"

// TemplateFuncs are the helpers available to collection templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusLiteral": statusLiteral,
	}
}

// NewTemplateEngine loads the embedded templates, overridden by customDir when set.
func NewTemplateEngine(customDir string) (*templates.TextTemplateEngine, error) {
	return templates.NewEngine(embeddedtmpl.FS, customDir, TemplateFuncs())
}

// ScriptBuilder renders Postman test scripts.
type ScriptBuilder struct {
	engine templates.Engine
}

func NewScriptBuilder(engine templates.Engine) *ScriptBuilder {
	return &ScriptBuilder{engine: engine}
}

type scriptData struct {
	StatusCode string
	Schema     string
}

// BuildTestScript renders the assertions for one response. A nil schema omits
// the JSON Schema check. The schema is expected to be resolved already.
func (b *ScriptBuilder) BuildTestScript(schema *model.Schema, status string) (string, error) {
	data := scriptData{StatusCode: status}
	if schema != nil {
		js, err := schema.CompactJSON()
		if err != nil {
			return "", err
		}
		data.Schema = js
	}
	return b.engine.Execute(TestScriptTemplate, data)
}

// statusLiteral renders numeric codes bare and anything else ("default", "2XX") as a JS string.
func statusLiteral(status string) string {
	if _, err := strconv.Atoi(status); err == nil {
		return status
	}
	return strconv.Quote(status)
}
