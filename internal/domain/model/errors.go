package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidPath = errors.New("invalid document path")
)
