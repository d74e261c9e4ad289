// Package leaderboard implements the ranked-entry query engine: filtering,
// sorting, offset and cursor pagination, scored search and facet summaries
// over a read-only snapshot of player ranking records.
package leaderboard

import (
	"time"
)

// Entry is one player's ranking record as supplied by the snapshot source.
// The engine never mutates entries it receives; every stage returns a new slice.
type Entry struct {
	UserID                string    `json:"userId"`
	Username              string    `json:"username"`
	DisplayName           string    `json:"displayName,omitempty"`
	Score                 int       `json:"score"`
	TotalPuzzlesCompleted int       `json:"totalPuzzlesCompleted"`
	TotalModulesCompleted int       `json:"totalModulesCompleted"`
	AverageScore          float64   `json:"averageScore"`
	CompletionPercentage  float64   `json:"completionPercentage"`
	LastActiveAt          time.Time `json:"lastActiveAt"`
	Country               string    `json:"country,omitempty"`
	Region                string    `json:"region,omitempty"`

	// Rank is page-local: it is assigned by Paginate and is only meaningful
	// within one query's filtered and sorted view.
	Rank int `json:"rank,omitempty"`
}

// cloneEntries returns a shallow copy of entries so callers can reorder or
// annotate the result without touching the snapshot.
func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
