package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kolah/openapi2postman/internal/model"
	"github.com/kolah/openapi2postman/internal/postman"
)

const (
	AuthOAuth = "oauth"

	HeaderContentType = "Content-Type"
	HeaderClientID    = "client_id"
	HeaderAccessToken = "access_token"

	// NonexistentEndpoint is requested by 501 tests.
	NonexistentEndpoint = "/nonexistent-endpoint"
)

// RequestTemplate carries everything a request item needs except its
// description and body.
type RequestTemplate struct {
	StatusCode string
	Method     model.Method
	HostURL    string
	Endpoint   string
	TestScript string
	AuthType   string
}

// RequestName formats the display name of a request item.
func RequestName(status, description string) string {
	return fmt.Sprintf("%s (%s)", status, description)
}

// BuildRequest assembles one Postman request item.
func BuildRequest(tmpl RequestTemplate, description string, body any) (*postman.Item, error) {
	raw, err := PrettyJSON(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return &postman.Item{
		Name: RequestName(tmpl.StatusCode, description),
		Events: []postman.Event{{
			Listen: "test",
			Script: postman.Script{
				Type: "text/javascript",
				Exec: []string{tmpl.TestScript},
			},
		}},
		Request: &postman.Request{
			Method: string(tmpl.Method),
			Header: headers(tmpl),
			Body: postman.Body{
				Mode: "raw",
				Raw:  raw,
			},
			URL: requestURL(tmpl.HostURL, tmpl.Endpoint),
		},
		Response: []postman.Response{},
	}, nil
}

func headers(tmpl RequestTemplate) []postman.Header {
	h := []postman.Header{}
	if tmpl.Method.NeedsBody() {
		h = append(h, postman.Header{
			Key:   HeaderContentType,
			Name:  HeaderContentType,
			Type:  "text",
			Value: model.JSONMediaType,
		})
	}
	if tmpl.AuthType == AuthOAuth {
		h = append(h,
			postman.Header{Key: HeaderClientID, Type: "text", Value: "{{client_id}}"},
			postman.Header{Key: HeaderAccessToken, Type: "text", Value: "{{access_token}}"},
		)
	}
	return h
}

func requestURL(host, endpoint string) postman.URL {
	trimmed := strings.TrimPrefix(endpoint, "/")
	return postman.URL{
		Raw:  strings.TrimSuffix(host, "/") + "/" + trimmed,
		Host: []string{host},
		Path: strings.Split(trimmed, "/"),
	}
}

// PrettyJSON renders v with a four-space indent, leaving HTML characters and
// non-ASCII text unescaped.
func PrettyJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
