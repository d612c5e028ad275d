// Package server exposes collection generation over HTTP.
package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/kolah/openapi2postman/internal/loader"
	"github.com/kolah/openapi2postman/middleware"
	"github.com/rs/zerolog"
)

//go:embed openapi.yaml
var apiSpec []byte

// HealthMessage is returned by the health endpoint.
const HealthMessage = "OpenAPI2Postman is up and running!"

type Options struct {
	Addr string

	// Defaults seeds every generation; query parameters override the per-request fields.
	Defaults engine.Options

	MaxBodyBytes    int64
	ShutdownTimeout time.Duration

	Logger zerolog.Logger
}

type Server struct {
	opts   Options
	log    zerolog.Logger
	router chi.Router
}

func New(opts Options) (*Server, error) {
	if opts.Defaults.Templates == nil {
		tmpl, err := engine.NewTemplateEngine("")
		if err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
		opts.Defaults.Templates = tmpl
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = middleware.DefaultMaxBodyBytes
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts: opts,
		log:  opts.Logger.With().Str("component", "server").Logger(),
	}

	validation, err := middleware.NewFromBytes(apiSpec, &middleware.Options{
		ValidateRequest: true,
		MaxBodyBytes:    opts.MaxBodyBytes,
		ErrorHandler:    s.validationError,
	})
	if err != nil {
		return nil, fmt.Errorf("loading API description: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.accessLog)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(validation.Handler)
		r.Get("/health", s.health)
		r.Post("/postman/collection", s.createCollection)
	})

	s.router = r
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{OK: true, Message: HealthMessage})
}

type collectionResponse struct {
	Filename   string         `json:"filename"`
	Collection any            `json:"collection"`
	Metrics    engine.Metrics `json:"metrics"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_body", err)
		return
	}

	doc, warnings, err := loader.Parse(body)
	if err != nil {
		s.writeEngineError(w, log, err)
		return
	}
	for _, warning := range warnings {
		log.Warn().Str("warning", warning).Msg("document loaded with warnings")
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "validation_error", err)
		return
	}
	opts.Logger = &log

	gen, err := engine.New(opts)
	if err != nil {
		s.writeEngineError(w, log, err)
		return
	}

	result, err := gen.Generate(doc)
	if err != nil {
		s.writeEngineError(w, log, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, collectionResponse{
		Filename:   result.Filename,
		Collection: result.Collection,
		Metrics:    result.Metrics,
	})
}

func (s *Server) requestOptions(r *http.Request) (engine.Options, error) {
	opts := s.opts.Defaults
	q := r.URL.Query()

	opts.Environment = q.Get("environment")
	opts.HostURL = q.Get("hostUrl")
	opts.AuthorizationType = q.Get("authorizationType")

	var err error
	if opts.GenerateBody, err = queryBool(q.Get("generateBody"), opts.GenerateBody); err != nil {
		return opts, fmt.Errorf("generateBody: %w", err)
	}
	if opts.GenerateBadRequests, err = queryBool(q.Get("generateBadRequests"), opts.GenerateBadRequests); err != nil {
		return opts, fmt.Errorf("generateBadRequests: %w", err)
	}
	return opts, nil
}

func queryBool(v string, fallback bool) (bool, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseBool(v)
}

// StatusFor maps a generation error onto an HTTP status: document problems are
// 422, anything else is 500.
func StatusFor(err error) int {
	var (
		inputErr       *loader.InputFormatError
		versionErr     *loader.UnsupportedVersionError
		unknownErr     *engine.UnknownComponentError
		cyclicErr      *engine.CyclicSchemaError
		environmentErr *engine.InvalidEnvironmentError
		malformedErr   *engine.MalformedDocumentError
	)
	switch {
	case errors.As(err, &inputErr),
		errors.As(err, &versionErr),
		errors.As(err, &unknownErr),
		errors.As(err, &cyclicErr),
		errors.As(err, &environmentErr),
		errors.As(err, &malformedErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("collection generation failed")
		s.writeError(w, status, "internal_error", err)
		return
	}
	log.Info().Err(err).Msg("document rejected")
	s.writeError(w, status, "unprocessable_document", err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code string, err error) {
	s.writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func (s *Server) validationError(w http.ResponseWriter, r *http.Request, err *middleware.ValidationError) {
	log := s.requestLogger(r)
	log.Info().
		Int("status", err.StatusCode).
		Int("violations", len(err.Errors)).
		Msg("request rejected by validation")

	s.writeJSON(w, err.StatusCode, map[string]any{
		"error":   "validation_error",
		"message": err.Message,
		"details": middleware.FormatValidationErrors(err.Errors),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) requestLogger(r *http.Request) zerolog.Logger {
	return s.log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log := s.requestLogger(r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}
