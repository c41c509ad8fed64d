package manifest

import "errors"

// Sentinel kinds for manifest errors.
var (
	ErrNotFound = errors.New("manifest not found")
	ErrRead     = errors.New("read manifest")
	ErrWrite    = errors.New("write manifest")
)
