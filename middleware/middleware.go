// Package middleware validates incoming HTTP requests against an OpenAPI description.
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Middleware validates requests against an OpenAPI spec.
type Middleware struct {
	validator validator.Validator
	model     *libopenapi.DocumentModel[v3.Document]
	options   *Options
}

// New creates middleware from an OpenAPI spec string.
func New(spec string, opts *Options) (*Middleware, error) {
	return NewFromBytes([]byte(spec), opts)
}

// NewFromBytes creates middleware from OpenAPI spec bytes.
func NewFromBytes(spec []byte, opts *Options) (*Middleware, error) {
	doc, err := libopenapi.NewDocument(spec)
	if err != nil {
		return nil, err
	}

	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	return &Middleware{
		validator: v,
		model:     model,
		options:   opts,
	}, nil
}

// Handler returns an http.Handler middleware. Requests for paths the spec
// does not describe pass through untouched so the router can answer them.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.options.ValidateRequest || m.findOperation(r.URL.Path, r.Method) == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := m.bufferBody(r)
		if err != nil {
			m.handleError(w, r, &ValidationError{
				StatusCode: http.StatusRequestEntityTooLarge,
				Message:    err.Error(),
			})
			return
		}

		valid, errs := m.validator.ValidateHttpRequestSync(r)
		if !valid {
			m.handleError(w, r, &ValidationError{
				StatusCode: http.StatusBadRequest,
				Message:    "request validation failed",
				Errors:     errs,
			})
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// bufferBody reads the body once, up to MaxBodyBytes, and leaves a fresh
// reader in place for the validator.
func (m *Middleware) bufferBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		r.Body = http.NoBody
		return nil, nil
	}

	reader := io.Reader(r.Body)
	if m.options.MaxBodyBytes > 0 {
		reader = io.LimitReader(r.Body, m.options.MaxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	_ = r.Body.Close()
	if err != nil {
		return nil, err
	}
	if m.options.MaxBodyBytes > 0 && int64(len(body)) > m.options.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// findOperation returns the documented operation for the request, or nil when
// the request should pass through unvalidated.
func (m *Middleware) findOperation(path, method string) *v3.Operation {
	if m.model == nil || m.model.Model.Paths == nil || m.model.Model.Paths.PathItems == nil {
		return nil
	}

	for pathPattern, pathItem := range m.model.Model.Paths.PathItems.FromOldest() {
		if matchPath(pathPattern, path) {
			return getOperation(pathItem, method)
		}
	}
	return nil
}

func matchPath(pattern, path string) bool {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i, pp := range patternParts {
		if len(pp) > 0 && pp[0] == '{' && pp[len(pp)-1] == '}' {
			continue
		}
		if pp != pathParts[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if len(p) == 0 {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			parts = append(parts, p[start:i])
			start = i + 1
		}
	}
	parts = append(parts, p[start:])
	return parts
}

func getOperation(pathItem *v3.PathItem, method string) *v3.Operation {
	switch method {
	case http.MethodGet:
		return pathItem.Get
	case http.MethodPost:
		return pathItem.Post
	case http.MethodPut:
		return pathItem.Put
	case http.MethodDelete:
		return pathItem.Delete
	case http.MethodPatch:
		return pathItem.Patch
	case http.MethodHead:
		return pathItem.Head
	case http.MethodOptions:
		return pathItem.Options
	case http.MethodTrace:
		return pathItem.Trace
	}
	return nil
}

func (m *Middleware) handleError(w http.ResponseWriter, r *http.Request, err *ValidationError) {
	if m.options.ErrorHandler != nil {
		m.options.ErrorHandler(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   "validation_error",
		"message": err.Message,
		"details": FormatValidationErrors(err.Errors),
	})
}

// FormatValidationErrors flattens validator errors into JSON-friendly maps.
func FormatValidationErrors(errs []*validatorErrors.ValidationError) []map[string]any {
	result := []map[string]any{}
	for _, e := range errs {
		item := map[string]any{
			"message": e.Message,
		}
		if e.Reason != "" {
			item["reason"] = e.Reason
		}
		if e.HowToFix != "" {
			item["howToFix"] = e.HowToFix
		}
		result = append(result, item)
	}
	return result
}
