package remote

import "errors"

// Sentinel kinds for remote store errors.
var (
	// ErrNotFound means the remote holds no batch for the leaderboard.
	// It is a normal outcome of Fetch, not a failure.
	ErrNotFound    = errors.New("remote batch not found")
	ErrFetch       = errors.New("fetch batch")
	ErrPublish     = errors.New("publish batch")
	ErrUnsupported = errors.New("unsupported remote backend")
)
