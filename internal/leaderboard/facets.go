package leaderboard

import (
	"slices"
)

// ScoreRange is the inclusive score span of a snapshot.
type ScoreRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FilterOptions is the facet catalog used to populate client filter controls.
type FilterOptions struct {
	Countries      []string   `json:"countries"`
	Regions        []string   `json:"regions"`
	ChallengeTypes []string   `json:"challengeTypes"`
	Timeframes     []string   `json:"timeframes"`
	ScoreRange     ScoreRange `json:"scoreRange"`
}

// Timeframes lists the timeframe catalog in display order.
func Timeframes() []string {
	return []string{TimeframeDaily, TimeframeWeekly, TimeframeMonthly, TimeframeAllTime}
}

// Summarize derives the facet catalog from a snapshot using the engine's
// bucket table. An empty snapshot yields a zero score range.
func (e *Engine) Summarize(entries []Entry) FilterOptions {
	return summarize(entries, e.buckets)
}

// Summarize derives the facet catalog using the default bucket table.
func Summarize(entries []Entry) FilterOptions {
	return summarize(entries, DefaultBuckets())
}

func summarize(entries []Entry, buckets BucketTable) FilterOptions {
	countries := make(map[string]struct{})
	regions := make(map[string]struct{})
	var scores ScoreRange

	for i, entry := range entries {
		if entry.Country != "" {
			countries[entry.Country] = struct{}{}
		}
		if entry.Region != "" {
			regions[entry.Region] = struct{}{}
		}
		if i == 0 {
			scores = ScoreRange{Min: entry.Score, Max: entry.Score}
			continue
		}
		scores.Min = min(scores.Min, entry.Score)
		scores.Max = max(scores.Max, entry.Score)
	}

	return FilterOptions{
		Countries:      sortedKeys(countries),
		Regions:        sortedKeys(regions),
		ChallengeTypes: buckets.Names(),
		Timeframes:     Timeframes(),
		ScoreRange:     scores,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
