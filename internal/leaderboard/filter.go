package leaderboard

import (
	"strings"
	"time"
)

// predicate is a single filter clause.
type predicate func(Entry) bool

// Filter returns the entries satisfying every active clause of c.
// Clauses are independent and combine with AND, so their evaluation order
// never changes the result.
func (e *Engine) Filter(entries []Entry, c Criteria) []Entry {
	preds := e.predicates(c.normalize(), e.now())

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if matchesAll(entry, preds) {
			out = append(out, entry)
		}
	}
	return out
}

func matchesAll(entry Entry, preds []predicate) bool {
	for _, p := range preds {
		if !p(entry) {
			return false
		}
	}
	return true
}

// predicates builds the active clauses of a normalized Criteria.
func (e *Engine) predicates(c Criteria, now time.Time) []predicate {
	var preds []predicate

	// Geography only applies when the scope names the same dimension.
	if c.Type == ScopeCountry && c.Country != "" {
		country := c.Country
		preds = append(preds, func(en Entry) bool {
			return strings.EqualFold(en.Country, country)
		})
	}
	if c.Type == ScopeRegion && c.Region != "" {
		region := c.Region
		preds = append(preds, func(en Entry) bool {
			return strings.EqualFold(en.Region, region)
		})
	}

	if c.ChallengeType != "" {
		if rule, ok := e.buckets.Lookup(c.ChallengeType); ok {
			preds = append(preds, func(en Entry) bool {
				return rule.Matches(en, now)
			})
		}
	}

	// Timeframes reuse the recency rows of the bucket table.
	if c.Timeframe != "" && c.Timeframe != TimeframeAllTime {
		if rule, ok := e.buckets.Lookup(c.Timeframe); ok && rule.Field == MetricLastActiveAt {
			preds = append(preds, func(en Entry) bool {
				return rule.Matches(en, now)
			})
		}
	}

	if c.StartDate != nil {
		start := *c.StartDate
		preds = append(preds, func(en Entry) bool {
			return !en.LastActiveAt.Before(start)
		})
	}
	if c.EndDate != nil {
		end := *c.EndDate
		preds = append(preds, func(en Entry) bool {
			return !en.LastActiveAt.After(end)
		})
	}

	if c.Search != "" {
		term := strings.ToLower(c.Search)
		preds = append(preds, func(en Entry) bool {
			return containsFold(en.Username, term) ||
				containsFold(en.DisplayName, term) ||
				containsFold(en.UserID, term)
		})
	}

	if c.MinScore != nil {
		lo := *c.MinScore
		preds = append(preds, func(en Entry) bool {
			return en.Score >= lo
		})
	}
	if c.MaxScore != nil {
		hi := *c.MaxScore
		preds = append(preds, func(en Entry) bool {
			return en.Score <= hi
		})
	}

	return preds
}

// containsFold reports whether s contains the already-lowercased term.
func containsFold(s, lowerTerm string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
