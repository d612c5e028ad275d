package middleware

import (
	"net/http"
)

// ErrorHandler is called when validation fails.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err *ValidationError)

// Options configures middleware behavior.
type Options struct {
	ValidateRequest bool
	// MaxBodyBytes caps the buffered request body; zero means no limit.
	MaxBodyBytes    int64
	ErrorHandler    ErrorHandler
}

// DefaultMaxBodyBytes bounds request bodies when DefaultOptions is used.
const DefaultMaxBodyBytes = 10 << 20

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		ValidateRequest: true,
		MaxBodyBytes:    DefaultMaxBodyBytes,
	}
}
