// Package engine turns a parsed OpenAPI document into a Postman collection.
package engine

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kolah/openapi2postman/internal/model"
	"github.com/kolah/openapi2postman/internal/postman"
	"github.com/kolah/openapi2postman/internal/templates"
	"github.com/rs/zerolog"
)

const (
	// DefaultNamePrefix names collections of documents without an info title.
	DefaultNamePrefix = "OpenAPI2Postman-"

	// CollectionSuffix is appended to the collection name to form its file name.
	CollectionSuffix = ".postman_collection.json"

	timestampLayout = "2006-01-02T15-04-05"
)

type Options struct {
	Environment       string
	HostURL           string
	DefaultHostURL    string
	AuthorizationType string

	GenerateBody        bool
	GenerateBadRequests bool

	// SuccessBody replaces the generated body of 200 and 201 requests when set.
	SuccessBody any

	Templates templates.Engine
	Logger    *zerolog.Logger

	Now   func() time.Time
	NewID func() string
}

// Metrics tallies one generation run.
type Metrics struct {
	Endpoints    int `json:"endpoints"`
	Resources    int `json:"resources"`
	Operations   int `json:"operations"`
	TestRequests int `json:"testRequests"`
}

type Result struct {
	Filename   string
	Collection *postman.Collection
	Metrics    Metrics
}

// Generator assembles collections. It holds no per-run state and may be
// shared by concurrent Generate calls.
type Generator struct {
	opts    Options
	scripts *ScriptBuilder
	log     zerolog.Logger
}

func New(opts Options) (*Generator, error) {
	if opts.Templates == nil {
		engine, err := NewTemplateEngine("")
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
		opts.Templates = engine
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	return &Generator{
		opts:    opts,
		scripts: NewScriptBuilder(opts.Templates),
		log:     log,
	}, nil
}

// Generate builds the collection for doc.
func (g *Generator) Generate(doc *model.Document) (*Result, error) {
	name := g.collectionName(doc)
	log := g.log.With().Str("collection", name).Logger()

	hostURL, err := g.hostURL(doc)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("host_url", hostURL).
		Str("authorization_type", g.opts.AuthorizationType).
		Bool("generate_body", g.opts.GenerateBody).
		Bool("generate_bad_requests", g.opts.GenerateBadRequests).
		Msg("generating collection")

	coll := postman.New(g.opts.NewID(), name)
	metrics := Metrics{Endpoints: len(doc.Paths)}
	resources := make(map[string]struct{})

	for _, path := range doc.Paths {
		for i := range path.Operations {
			op := &path.Operations[i]
			metrics.Operations++

			resource, opName, items, err := g.operation(doc, op, hostURL, metrics.Operations)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", op.Method, op.Path, err)
			}

			resources[resource] = struct{}{}
			coll.AddToOperation(resource, opName, items...)
			metrics.TestRequests += len(items)

			log.Debug().
				Str("method", string(op.Method)).
				Str("path", op.Path).
				Int("requests", len(items)).
				Msg("operation assembled")
		}
	}
	metrics.Resources = len(resources)

	log.Info().
		Int("endpoints", metrics.Endpoints).
		Int("resources", metrics.Resources).
		Int("operations", metrics.Operations).
		Int("test_requests", metrics.TestRequests).
		Msg("collection generated")

	return &Result{
		Filename:   FileName(name) + CollectionSuffix,
		Collection: coll,
		Metrics:    metrics,
	}, nil
}

func (g *Generator) operation(doc *model.Document, op *model.Operation, hostURL string, n int) (string, string, []*postman.Item, error) {
	if len(op.Tags) == 0 {
		return "", "", nil, &MalformedDocumentError{
			Location: string(op.Method) + " " + op.Path,
			Reason:   "operation declares no tags",
		}
	}
	resource := op.Tags[0]

	opName := op.DisplayName()
	if opName == "" {
		opName = fmt.Sprintf("Operation %d", n)
	}

	needsBody := op.Method.NeedsBody()
	reqSchema := op.RequestSchema()

	var body any = NewObject()
	if needsBody && g.opts.GenerateBody && reqSchema != nil {
		generated, err := SchemaBody(doc, reqSchema)
		if err != nil {
			return "", "", nil, err
		}
		body = generated
	}

	var items []*postman.Item
	for _, resp := range op.Responses {
		respSchema, err := Resolve(doc, resp.Schema)
		if err != nil {
			return "", "", nil, fmt.Errorf("response %s: %w", resp.StatusCode, err)
		}
		script, err := g.scripts.BuildTestScript(respSchema, resp.StatusCode)
		if err != nil {
			return "", "", nil, err
		}

		tmpl := RequestTemplate{
			StatusCode: resp.StatusCode,
			Method:     op.Method,
			HostURL:    hostURL,
			Endpoint:   op.Path,
			TestScript: script,
			AuthType:   g.opts.AuthorizationType,
		}

		switch resp.StatusCode {
		case "200", "201":
			if needsBody && g.opts.GenerateBody {
				success := body
				if g.opts.SuccessBody != nil {
					success = g.opts.SuccessBody
				}
				item, err := BuildRequest(tmpl, resp.Description, success)
				if err != nil {
					return "", "", nil, err
				}
				items = append(items, item)
				continue
			}

		case "400", "422":
			if needsBody && g.opts.GenerateBadRequests && reqSchema != nil {
				bad, err := g.badRequests(doc, reqSchema, body, tmpl)
				if err != nil {
					return "", "", nil, err
				}
				items = append(items, bad...)
				continue
			}

		case "401":
			base, err := BuildRequest(tmpl, "without authorization headers", body)
			if err != nil {
				return "", "", nil, err
			}
			noClient := base.WithoutHeader(HeaderClientID)
			noClient.Name = RequestName(resp.StatusCode, "missing "+HeaderClientID)
			noToken := base.WithoutHeader(HeaderAccessToken)
			noToken.Name = RequestName(resp.StatusCode, "missing "+HeaderAccessToken)
			items = append(items, noClient, noToken)
			continue

		case "501":
			tmpl.Endpoint = NonexistentEndpoint
		}

		item, err := BuildRequest(tmpl, resp.Description, body)
		if err != nil {
			return "", "", nil, err
		}
		items = append(items, item)
	}

	return resource, opName, items, nil
}

// badRequests derives violations from the canonical body, generating one
// first when body generation is off.
func (g *Generator) badRequests(doc *model.Document, reqSchema *model.Schema, body any, tmpl RequestTemplate) ([]*postman.Item, error) {
	valid := body
	if !g.opts.GenerateBody {
		generated, err := SchemaBody(doc, reqSchema)
		if err != nil {
			return nil, err
		}
		valid = generated
	}
	return BadRequests(doc, reqSchema, valid, tmpl)
}

func (g *Generator) collectionName(doc *model.Document) string {
	if doc.Info.Title != "" {
		return doc.Info.Title
	}
	return DefaultNamePrefix + g.opts.Now().Format(timestampLayout)
}

// postmanVariable matches an environment given as a Postman variable, e.g. {{baseUrl}}.
var postmanVariable = regexp.MustCompile(`^\{\{.*\}\}$`)

// hostURL picks the base URL: explicit override, then the server matching
// the requested environment, then the configured default. An environment
// written as a Postman variable is used as the host itself.
func (g *Generator) hostURL(doc *model.Document) (string, error) {
	if g.opts.HostURL != "" {
		return g.opts.HostURL, nil
	}
	if env := g.opts.Environment; env != "" {
		if postmanVariable.MatchString(env) {
			return env, nil
		}
		url, ok := doc.ServerURL(env)
		if !ok {
			return "", &InvalidEnvironmentError{Environment: env}
		}
		return url, nil
	}
	return g.opts.DefaultHostURL, nil
}

var fileNameReplacer = strings.NewReplacer("/", "-", "\\", "-", ":", "-")

// FileName makes a collection name safe to use as a file name.
func FileName(name string) string {
	return fileNameReplacer.Replace(name)
}
