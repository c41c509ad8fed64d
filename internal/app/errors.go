package service

import "errors"

// Sentinel kinds for run-level errors.
var (
	ErrRemote        = errors.New("remote store failure")
	ErrLeaderboard   = errors.New("leaderboard conversion failed")
	ErrPublishFailed = errors.New("publish failed")
	ErrNotConfigured = errors.New("service not configured")
)
