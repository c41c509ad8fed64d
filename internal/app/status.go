package service

import "github.com/okian/evalsync/internal/manifest"

// Status is the terminal state of a sync run.
type Status int

const (
	// StatusNoChanges means no leaderboard had changed documents.
	StatusNoChanges Status = iota
	// StatusSuccess means every changed leaderboard was converted.
	StatusSuccess
	// StatusPartialFailure means some leaderboards failed and others converted.
	StatusPartialFailure
	// StatusFailure means no changed leaderboard converted, or the run aborted.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusNoChanges:
		return "no_changes"
	case StatusSuccess:
		return "success"
	case StatusPartialFailure:
		return "partial_failure"
	default:
		return "failure"
	}
}

// OK reports whether the run should exit zero.
func (s Status) OK() bool {
	return s == StatusNoChanges || s == StatusSuccess
}

// StatusOf derives the run status from a manifest alone, the same way a
// downstream consumer of the manifest file would.
func StatusOf(m manifest.Manifest) Status {
	switch {
	case m.Errors == 0 && len(m.Changed) == 0:
		return StatusNoChanges
	case m.Errors == 0:
		return StatusSuccess
	case len(m.Converted) > 0:
		return StatusPartialFailure
	default:
		return StatusFailure
	}
}
