package loader

import "fmt"

// InputFormatError reports a document that is not JSON or lacks the openapi key.
type InputFormatError struct {
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid OpenAPI document: %s: %v", e.Reason, e.Err)
	}
	return "invalid OpenAPI document: " + e.Reason
}

func (e *InputFormatError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError reports an openapi version other than 3.0.0.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported OpenAPI version: %q (only 3.0.0 supported)", e.Version)
}
