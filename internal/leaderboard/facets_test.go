package leaderboard

import (
	"slices"
	"testing"
)

func TestSummarize(t *testing.T) {
	entries := append(scenarioEntries(),
		Entry{UserID: "u6", Score: 3100},              // no geography
		Entry{UserID: "u7", Score: 50, Country: "GB"}, // duplicate country
	)

	opts := Summarize(entries)

	if !slices.Equal(opts.Countries, []string{"DE", "GB", "US"}) {
		t.Errorf("countries = %v", opts.Countries)
	}
	if !slices.Equal(opts.Regions, []string{"EU", "NA"}) {
		t.Errorf("regions = %v", opts.Regions)
	}
	if opts.ScoreRange != (ScoreRange{Min: 50, Max: 3100}) {
		t.Errorf("score range = %+v", opts.ScoreRange)
	}
	wantTypes := []string{"daily", "weekly", "monthly", "puzzle", "module", "special_event"}
	if !slices.Equal(opts.ChallengeTypes, wantTypes) {
		t.Errorf("challenge types = %v", opts.ChallengeTypes)
	}
	if !slices.Equal(opts.Timeframes, []string{"daily", "weekly", "monthly", "all_time"}) {
		t.Errorf("timeframes = %v", opts.Timeframes)
	}
}

func TestSummarize_Empty(t *testing.T) {
	opts := Summarize(nil)
	if opts.Countries == nil || opts.Regions == nil || len(opts.Countries)+len(opts.Regions) != 0 {
		t.Errorf("empty snapshot facets = %+v", opts)
	}
	if opts.ScoreRange != (ScoreRange{}) {
		t.Errorf("score range = %+v, want zero", opts.ScoreRange)
	}
}

func TestSummarize_NegativeScores(t *testing.T) {
	opts := Summarize([]Entry{{UserID: "a", Score: -10}, {UserID: "b", Score: -3}})
	if opts.ScoreRange != (ScoreRange{Min: -10, Max: -3}) {
		t.Errorf("score range = %+v", opts.ScoreRange)
	}
}

func TestEngineSummarize_UsesBucketTable(t *testing.T) {
	e := NewEngine(WithBuckets(BucketTable{{Name: "marathon", Field: MetricPuzzlesCompleted, Comparator: CompareAtLeast, Threshold: 100}}))
	if got := e.Summarize(scenarioEntries()).ChallengeTypes; !slices.Equal(got, []string{"marathon"}) {
		t.Errorf("challenge types = %v", got)
	}
}
