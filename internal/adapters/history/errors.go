package history

import "errors"

// Sentinel kinds for history errors.
var (
	ErrGit       = errors.New("git command failed")
	ErrParseDiff = errors.New("parse diff")
)
