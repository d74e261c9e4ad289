package leaderboard

import "errors"

// Errors returned by the engine. Callers branch on them with errors.Is.
var (
	// ErrInvalidCursor means a cursor token could not be decoded. It is a
	// caller input problem, distinct from internal failures.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrUserNotFound means a standing lookup found no entry for the user
	// within the query's view.
	ErrUserNotFound = errors.New("user not found in leaderboard view")

	// ErrSnapshotUnavailable wraps failures of the snapshot source.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
)
