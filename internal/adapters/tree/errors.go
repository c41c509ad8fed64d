package tree

import "errors"

// Sentinel kinds for document tree errors.
var (
	ErrInvalidTarget = errors.New("invalid input path")
	ErrNoDocuments   = errors.New("no JSON documents found")
	ErrWriteDocument = errors.New("write document")
)
