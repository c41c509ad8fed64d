package merge

import "errors"

// Sentinel kinds for merge errors. The first two are scoped to one
// leaderboard, ErrLeaderboardMismatch to one document.
var (
	// ErrIntegrity means a persisted batch already holds a duplicate key
	// or rows of more than one leaderboard. The batch is reported, never
	// repaired.
	ErrIntegrity = errors.New("batch integrity violation")
	// ErrEmptyResult means no document was accepted and there is no prior
	// batch to keep.
	ErrEmptyResult = errors.New("no valid documents and no existing batch")
	// ErrLeaderboardMismatch means a document lives under a different
	// leaderboard than the batch it was offered to.
	ErrLeaderboardMismatch = errors.New("document belongs to another leaderboard")
)
