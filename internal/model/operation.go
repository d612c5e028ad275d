package model

type Operation struct {
	ID          string
	Method      Method
	Path        string
	Summary     string
	Description string
	Tags        []string
	RequestBody *RequestBody
	Responses   []Response
}

// DisplayName is the summary, falling back to the description.
func (o *Operation) DisplayName() string {
	if o.Summary != "" {
		return o.Summary
	}
	return o.Description
}

// RequestSchema returns the JSON request body schema, or nil when none is declared.
func (o *Operation) RequestSchema() *Schema {
	if o.RequestBody == nil {
		return nil
	}
	return o.RequestBody.Schema
}

type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodTrace   Method = "TRACE"
)

// NeedsBody reports whether requests with this method carry a JSON body.
func (m Method) NeedsBody() bool {
	return m == MethodPost || m == MethodPatch || m == MethodPut
}

// JSONMediaType is the only media type read from request and response content.
const JSONMediaType = "application/json"

type RequestBody struct {
	Description string
	Required    bool
	Schema      *Schema
}

type Response struct {
	StatusCode  string
	Description string
	Schema      *Schema
}
