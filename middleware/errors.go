package middleware

import (
	"errors"

	validatorErrors "github.com/pb33f/libopenapi-validator/errors"
)

// ErrBodyTooLarge is reported when a request body exceeds Options.MaxBodyBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ValidationError wraps libopenapi-validator errors with HTTP semantics.
type ValidationError struct {
	StatusCode int
	Message    string
	Errors     []*validatorErrors.ValidationError
}

func (e *ValidationError) Error() string {
	return e.Message
}
