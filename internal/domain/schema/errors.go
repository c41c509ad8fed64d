package schema

import (
	"errors"
	"fmt"
)

// Sentinel kinds for document-scoped validation errors.
var (
	ErrMissingField = errors.New("missing required field")
	ErrMalformed    = errors.New("malformed document")
)

// ValidationError names the first required field that is absent or null.
type ValidationError struct {
	Path string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Path)
}

func (e *ValidationError) Unwrap() error { return ErrMissingField }
