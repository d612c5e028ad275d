// Package postman holds the Postman Collection v2.1.0 document types.
package postman

import (
	"bytes"
	"encoding/json"
)

// SchemaURL identifies the collection format understood by Postman importers.
const SchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Collection is the root of a Postman collection.
type Collection struct {
	Info  Info    `json:"info"`
	Items []*Item `json:"item"`
}

type Info struct {
	PostmanID string `json:"_postman_id,omitempty"`
	Name      string `json:"name"`
	Schema    string `json:"schema"`
}

// Item is either a folder (Request nil) or a request.
type Item struct {
	Name string `json:"name"`

	// Folder fields
	Items                   []*Item   `json:"item"`
	ProtocolProfileBehavior *struct{} `json:"protocolProfileBehavior"`
	IsSubFolder             bool      `json:"_postman_isSubFolder"`

	// Request fields
	Events   []Event    `json:"event"`
	Request  *Request   `json:"request"`
	Response []Response `json:"response"`
}

type folderJSON struct {
	Name                    string    `json:"name"`
	Items                   []*Item   `json:"item"`
	ProtocolProfileBehavior *struct{} `json:"protocolProfileBehavior,omitempty"`
	IsSubFolder             bool      `json:"_postman_isSubFolder,omitempty"`
}

type requestJSON struct {
	Name     string     `json:"name"`
	Events   []Event    `json:"event"`
	Request  *Request   `json:"request"`
	Response []Response `json:"response"`
}

// MarshalJSON emits only the keys that belong to the item's shape, so folders
// never carry request keys and requests always carry an empty response list.
func (i *Item) MarshalJSON() ([]byte, error) {
	if i.IsFolder() {
		items := i.Items
		if items == nil {
			items = []*Item{}
		}
		return marshal(folderJSON{
			Name:                    i.Name,
			Items:                   items,
			ProtocolProfileBehavior: i.ProtocolProfileBehavior,
			IsSubFolder:             i.IsSubFolder,
		})
	}
	resp := i.Response
	if resp == nil {
		resp = []Response{}
	}
	return marshal(requestJSON{
		Name:     i.Name,
		Events:   i.Events,
		Request:  i.Request,
		Response: resp,
	})
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type Event struct {
	Listen string `json:"listen"`
	Script Script `json:"script"`
}

type Script struct {
	Type string   `json:"type"`
	Exec []string `json:"exec"`
}

type Request struct {
	Method string   `json:"method"`
	Header []Header `json:"header"`
	Body   Body     `json:"body"`
	URL    URL      `json:"url"`
}

type Header struct {
	Key   string `json:"key"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Body struct {
	Mode string `json:"mode"`
	Raw  string `json:"raw"`
}

type URL struct {
	Raw  string   `json:"raw"`
	Host []string `json:"host"`
	Path []string `json:"path"`
}

// Response is a saved example response. Generated requests carry none.
type Response struct {
	Name string `json:"name"`
}

// New creates an empty collection.
func New(id, name string) *Collection {
	return &Collection{
		Info: Info{
			PostmanID: id,
			Name:      name,
			Schema:    SchemaURL,
		},
		Items: []*Item{},
	}
}

// NewFolder creates an empty sub-folder.
func NewFolder(name string) *Item {
	return &Item{
		Name:                    name,
		Items:                   []*Item{},
		ProtocolProfileBehavior: &struct{}{},
		IsSubFolder:             true,
	}
}

// IsFolder reports whether the item groups other items.
func (i *Item) IsFolder() bool {
	return i.Request == nil
}

// WithoutHeader returns a copy of the item whose request lacks the named header.
// The receiver is not modified.
func (i *Item) WithoutHeader(key string) *Item {
	c := *i
	if i.Request != nil {
		req := *i.Request
		req.Header = make([]Header, 0, len(i.Request.Header))
		for _, h := range i.Request.Header {
			if h.Key != key {
				req.Header = append(req.Header, h)
			}
		}
		req.URL.Path = append([]string(nil), i.Request.URL.Path...)
		req.URL.Host = append([]string(nil), i.Request.URL.Host...)
		c.Request = &req
	}
	c.Events = append([]Event(nil), i.Events...)
	c.Response = append([]Response{}, i.Response...)
	return &c
}

// RequestCount returns the number of request items at any depth.
func (c *Collection) RequestCount() int {
	return countRequests(c.Items)
}

func countRequests(items []*Item) int {
	n := 0
	for _, it := range items {
		if it.IsFolder() {
			n += countRequests(it.Items)
			continue
		}
		n++
	}
	return n
}
