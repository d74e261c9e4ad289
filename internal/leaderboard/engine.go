package leaderboard

import (
	"time"

	"github.com/onnwee/leaderboard/internal/ranking"
)

// Engine evaluates leaderboard queries against caller-supplied snapshots.
// It holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	now     func() time.Time
	buckets BucketTable
	weights *ranking.Weights
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used by recency buckets and
// Result.LastUpdated. Tests pass a fixed clock to make output reproducible.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithBuckets replaces the challenge-type policy table.
func WithBuckets(table BucketTable) Option {
	return func(e *Engine) {
		if len(table) > 0 {
			e.buckets = append(BucketTable(nil), table...)
		}
	}
}

// WithWeights sets the search match weights. Nil keeps the defaults.
func WithWeights(w *ranking.Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.weights = w
		}
	}
}

// NewEngine creates an Engine with default buckets, weights and wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:     time.Now,
		buckets: DefaultBuckets(),
		weights: ranking.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buckets returns a copy of the engine's challenge-type policy table.
func (e *Engine) Buckets() BucketTable {
	return append(BucketTable(nil), e.buckets...)
}

// GetPaginatedLeaderboard runs the offset-mode pipeline:
// filter, sort, paginate, then attach applied filters and facets computed
// over the unfiltered snapshot.
func (e *Engine) GetPaginatedLeaderboard(entries []Entry, q Query) *Result {
	q = q.Normalize()

	filtered := e.Filter(entries, q.Criteria)
	sorted := Sort(filtered, q.SortBy, q.SortOrder)
	data, meta := Paginate(sorted, *q.Page, *q.Limit)

	return &Result{
		Data: data,
		Meta: meta,
		Filters: Filters{
			Applied:   AppliedFilters(q),
			Available: e.Summarize(entries),
		},
		LastUpdated: e.now(),
	}
}
