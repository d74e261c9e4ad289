package leaderboard

import (
	"time"
)

// Challenge-type bucket names.
const (
	BucketDaily        = "daily"
	BucketWeekly       = "weekly"
	BucketMonthly      = "monthly"
	BucketPuzzle       = "puzzle"
	BucketModule       = "module"
	BucketSpecialEvent = "special_event"
)

// Metric names the entry field a bucket rule inspects.
type Metric string

const (
	MetricLastActiveAt         Metric = "lastActiveAt"
	MetricPuzzlesCompleted     Metric = "totalPuzzlesCompleted"
	MetricModulesCompleted     Metric = "totalModulesCompleted"
	MetricCompletionPercentage Metric = "completionPercentage"
)

// Comparator is the test a bucket rule applies to its metric.
type Comparator string

const (
	// CompareWithin passes when the timestamp metric lies within Window of now.
	CompareWithin Comparator = "within"
	// CompareAtLeast passes when the numeric metric is >= Threshold.
	CompareAtLeast Comparator = "gte"
)

// BucketRule is one row of the challenge-type policy table.
type BucketRule struct {
	Name       string
	Field      Metric
	Comparator Comparator
	Threshold  float64       // used by CompareAtLeast
	Window     time.Duration // used by CompareWithin
}

// BucketTable is an ordered policy table. Order determines the facet catalog.
type BucketTable []BucketRule

// DefaultBuckets returns the built-in challenge-type heuristics.
func DefaultBuckets() BucketTable {
	return BucketTable{
		{Name: BucketDaily, Field: MetricLastActiveAt, Comparator: CompareWithin, Window: 24 * time.Hour},
		{Name: BucketWeekly, Field: MetricLastActiveAt, Comparator: CompareWithin, Window: 7 * 24 * time.Hour},
		{Name: BucketMonthly, Field: MetricLastActiveAt, Comparator: CompareWithin, Window: 30 * 24 * time.Hour},
		{Name: BucketPuzzle, Field: MetricPuzzlesCompleted, Comparator: CompareAtLeast, Threshold: 5},
		{Name: BucketModule, Field: MetricModulesCompleted, Comparator: CompareAtLeast, Threshold: 3},
		{Name: BucketSpecialEvent, Field: MetricCompletionPercentage, Comparator: CompareAtLeast, Threshold: 80},
	}
}

// Lookup finds the rule for name.
func (t BucketTable) Lookup(name string) (BucketRule, bool) {
	for _, rule := range t {
		if rule.Name == name {
			return rule, true
		}
	}
	return BucketRule{}, false
}

// Names lists the bucket names in table order.
func (t BucketTable) Names() []string {
	names := make([]string, len(t))
	for i, rule := range t {
		names[i] = rule.Name
	}
	return names
}

// Matches reports whether e satisfies the rule at time now.
// A rule with an unknown field or comparator matches everything.
func (r BucketRule) Matches(e Entry, now time.Time) bool {
	switch r.Comparator {
	case CompareWithin:
		if r.Field != MetricLastActiveAt {
			return true
		}
		return !e.LastActiveAt.Before(now.Add(-r.Window))
	case CompareAtLeast:
		value, ok := numericMetric(e, r.Field)
		if !ok {
			return true
		}
		return value >= r.Threshold
	default:
		return true
	}
}

func numericMetric(e Entry, field Metric) (float64, bool) {
	switch field {
	case MetricPuzzlesCompleted:
		return float64(e.TotalPuzzlesCompleted), true
	case MetricModulesCompleted:
		return float64(e.TotalModulesCompleted), true
	case MetricCompletionPercentage:
		return e.CompletionPercentage, true
	default:
		return 0, false
	}
}
