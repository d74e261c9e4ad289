// Package snapshot provides the sources that supply leaderboard entry
// snapshots to the query service: an in-memory store seeded from a file,
// Postgres, S3-compatible object storage, and a Redis cache that can front
// any of them.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/onnwee/leaderboard/internal/leaderboard"
)

// Common errors for snapshot sources.
var (
	ErrEmptyPath      = errors.New("snapshot file path is required")
	ErrInvalidPayload = errors.New("invalid snapshot payload")
)

// document is the on-disk and object-storage snapshot format. A bare JSON
// array of entries is also accepted.
type document struct {
	Entries []leaderboard.Entry `json:"entries"`
}

// InMemorySource is a SnapshotSource backed by a slice held in memory.
// Thread-safe via RWMutex; Snapshot returns a copy so callers never share
// backing storage with later Replace calls.
type InMemorySource struct {
	mu      sync.RWMutex
	entries []leaderboard.Entry
}

// NewInMemorySource creates a source holding a copy of entries.
func NewInMemorySource(entries []leaderboard.Entry) *InMemorySource {
	s := &InMemorySource{}
	s.Replace(entries)
	return s
}

// Replace swaps the held snapshot for a copy of entries.
func (s *InMemorySource) Replace(entries []leaderboard.Entry) {
	cp := make([]leaderboard.Entry, len(entries))
	copy(cp, entries)

	s.mu.Lock()
	s.entries = cp
	s.mu.Unlock()
}

// Snapshot returns a copy of the held entries.
func (s *InMemorySource) Snapshot(ctx context.Context) ([]leaderboard.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]leaderboard.Entry, len(s.entries))
	copy(cp, s.entries)
	return cp, nil
}

// Len returns the number of held entries.
func (s *InMemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// HealthCheck always succeeds; memory is always reachable.
func (s *InMemorySource) HealthCheck(ctx context.Context) error {
	return nil
}

// LoadFile reads a JSON snapshot file.
func LoadFile(path string) ([]leaderboard.Entry, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	entries, err := decodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}
	return entries, nil
}

// decodeEntries parses either {"entries": [...]} or a bare array.
func decodeEntries(r io.Reader) ([]leaderboard.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var entries []leaderboard.Entry
	var doc document
	if err := json.Unmarshal(data, &doc); err == nil {
		entries = doc.Entries
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := checkUniqueUsers(entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, nil
}

// checkUniqueUsers rejects snapshots that list a user more than once, which
// the Postgres source rules out with its primary key.
func checkUniqueUsers(entries []leaderboard.Entry) error {
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if first, ok := seen[e.UserID]; ok {
			return fmt.Errorf("%w: duplicate user id %q at entries %d and %d", ErrInvalidPayload, e.UserID, first, i)
		}
		seen[e.UserID] = i
	}
	return nil
}
