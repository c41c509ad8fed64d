package repository

import "errors"

// Sentinel kinds for batch store errors.
var (
	ErrNotFound = errors.New("batch not found")
	ErrRead     = errors.New("read batch")
	ErrWrite    = errors.New("write batch")
)
