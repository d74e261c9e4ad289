package leaderboard

import (
	"math"
	"reflect"
	"slices"
	"testing"
	"time"
)

func TestGetPaginatedLeaderboard_OffsetScenario(t *testing.T) {
	res := testEngine().GetPaginatedLeaderboard(scenarioEntries(), Query{
		Page:      Ptr(2),
		Limit:     Ptr(2),
		SortBy:    SortByScore,
		SortOrder: SortDesc,
	})

	if len(res.Data) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Data))
	}
	if res.Data[0].Username != "CharlieChamp" || res.Data[0].Rank != 3 {
		t.Errorf("first entry = %s rank %d", res.Data[0].Username, res.Data[0].Rank)
	}
	if res.Data[1].Username != "DianaQueen" || res.Data[1].Rank != 4 {
		t.Errorf("second entry = %s rank %d", res.Data[1].Username, res.Data[1].Rank)
	}

	want := Meta{Page: 2, Limit: 2, Total: 5, TotalPages: 3, HasNext: true, HasPrev: true}
	if res.Meta != want {
		t.Errorf("meta = %+v, want %+v", res.Meta, want)
	}
	if !res.LastUpdated.Equal(testNow) {
		t.Errorf("lastUpdated = %v, want %v", res.LastUpdated, testNow)
	}
}

func TestGetPaginatedLeaderboard_EmptySnapshot(t *testing.T) {
	res := testEngine().GetPaginatedLeaderboard(nil, Query{})

	if res.Data == nil || len(res.Data) != 0 {
		t.Errorf("data = %v, want empty non-nil slice", res.Data)
	}
	want := Meta{Page: 1, Limit: DefaultLimit, Total: 0, TotalPages: 0}
	if res.Meta != want {
		t.Errorf("meta = %+v, want %+v", res.Meta, want)
	}
	if res.Filters.Available.ScoreRange != (ScoreRange{}) {
		t.Errorf("score range = %+v, want zero", res.Filters.Available.ScoreRange)
	}
	if res.Filters.Applied == nil || len(res.Filters.Applied) != 0 {
		t.Errorf("applied = %v, want empty non-nil slice", res.Filters.Applied)
	}
}

func TestGetPaginatedLeaderboard_PagesCoverViewOnce(t *testing.T) {
	e := testEngine()
	entries := generatedEntries(237)

	queries := []Query{
		{Limit: Ptr(10)},
		{Limit: Ptr(7), SortBy: SortByPuzzles, SortOrder: SortAsc},
		{Limit: Ptr(25), SortBy: SortByRecent},
		{Limit: Ptr(3), Criteria: Criteria{Type: ScopeRegion, Region: "EU", MinScore: Ptr(100)}},
	}

	for _, q := range queries {
		first := e.GetPaginatedLeaderboard(entries, q)
		total := first.Meta.Total

		var all []Entry
		for page := 1; page <= first.Meta.TotalPages; page++ {
			q.Page = Ptr(page)
			all = append(all, e.GetPaginatedLeaderboard(entries, q).Data...)
		}

		if len(all) != total {
			t.Fatalf("query %+v: pages yielded %d entries, want %d", q, len(all), total)
		}
		seen := make(map[string]bool, total)
		for i, entry := range all {
			if entry.Rank != i+1 {
				t.Fatalf("query %+v: rank at position %d = %d", q, i, entry.Rank)
			}
			if seen[entry.UserID] {
				t.Fatalf("query %+v: %s appears twice", q, entry.UserID)
			}
			seen[entry.UserID] = true
		}
	}
}

func TestGetPaginatedLeaderboard_Idempotent(t *testing.T) {
	e := testEngine()
	entries := generatedEntries(120)
	q := Query{
		Page:      Ptr(3),
		Limit:     Ptr(9),
		Criteria:  Criteria{Type: ScopeCountry, Country: "us", Search: "player1", ChallengeType: "puzzle"},
		SortBy:    SortByCompletion,
		SortOrder: SortAsc,
	}

	a := e.GetPaginatedLeaderboard(entries, q)
	b := e.GetPaginatedLeaderboard(entries, q)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("identical inputs produced different results:\n%+v\n%+v", a, b)
	}
}

func TestGetPaginatedLeaderboard_DoesNotMutateSnapshot(t *testing.T) {
	entries := scenarioEntries()
	original := slices.Clone(entries)

	testEngine().GetPaginatedLeaderboard(entries, Query{SortBy: SortByScore, SortOrder: SortAsc})

	if !reflect.DeepEqual(entries, original) {
		t.Error("snapshot was modified")
	}
}

func TestGetPaginatedLeaderboard_Clamping(t *testing.T) {
	e := testEngine()
	entries := generatedEntries(150)

	tests := []struct {
		name      string
		page      *int
		limit     *int
		wantPage  int
		wantLimit int
	}{
		{"defaults", nil, nil, 1, 10},
		{"zero limit", nil, Ptr(0), 1, 1},
		{"negative limit", nil, Ptr(-5), 1, 1},
		{"limit above max", nil, Ptr(101), 1, 100},
		{"zero page", Ptr(0), nil, 1, 10},
		{"negative page", Ptr(-2), Ptr(20), 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.GetPaginatedLeaderboard(entries, Query{Page: tt.page, Limit: tt.limit})
			if res.Meta.Page != tt.wantPage || res.Meta.Limit != tt.wantLimit {
				t.Errorf("page/limit = %d/%d, want %d/%d", res.Meta.Page, res.Meta.Limit, tt.wantPage, tt.wantLimit)
			}
			if len(res.Data) != tt.wantLimit {
				t.Errorf("len(data) = %d, want %d", len(res.Data), tt.wantLimit)
			}
		})
	}
}

func TestGetPaginatedLeaderboard_PageBeyondEnd(t *testing.T) {
	res := testEngine().GetPaginatedLeaderboard(scenarioEntries(), Query{Page: Ptr(9), Limit: Ptr(2)})

	if len(res.Data) != 0 {
		t.Errorf("expected empty page, got %d entries", len(res.Data))
	}
	if res.Meta.HasNext || !res.Meta.HasPrev || res.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v", res.Meta)
	}
}

func TestGetPaginatedLeaderboard_HugePageIsPastTheEnd(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
	}{
		{name: "product wraps to small offset", page: 1<<62 + 1, limit: 100},
		{name: "max int page", page: math.MaxInt, limit: 100},
		{name: "max int page with limit one", page: math.MaxInt, limit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testEngine().GetPaginatedLeaderboard(scenarioEntries(), Query{Page: Ptr(tt.page), Limit: Ptr(tt.limit)})

			if len(res.Data) != 0 {
				t.Errorf("expected empty page, got %d entries", len(res.Data))
			}
			if res.Meta.Page != tt.page || res.Meta.HasNext || !res.Meta.HasPrev {
				t.Errorf("meta = %+v", res.Meta)
			}
		})
	}
}

func TestGetPaginatedLeaderboard_FacetsIgnoreFilters(t *testing.T) {
	res := testEngine().GetPaginatedLeaderboard(scenarioEntries(), Query{
		Criteria: Criteria{Type: ScopeCountry, Country: "DE"},
	})

	if res.Meta.Total != 1 {
		t.Fatalf("total = %d, want 1", res.Meta.Total)
	}
	if got := res.Filters.Available.Countries; !slices.Equal(got, []string{"DE", "GB", "US"}) {
		t.Errorf("countries = %v, want facets over the whole snapshot", got)
	}
	if got := res.Filters.Available.ScoreRange; got != (ScoreRange{Min: 1200, Max: 2500}) {
		t.Errorf("score range = %+v", got)
	}
}

func TestAppliedFilters(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"defaults", Query{}, []string{}},
		{"explicit defaults", Query{Criteria: Criteria{Type: ScopeGlobal, Timeframe: TimeframeAllTime}, SortBy: SortByScore, SortOrder: SortDesc}, []string{}},
		{"pagination only", Query{Page: Ptr(4), Limit: Ptr(50)}, []string{}},
		{
			name: "everything",
			q: Query{
				Criteria: Criteria{
					Type: ScopeRegion, Country: "US", Region: "NA", Timeframe: "Weekly",
					ChallengeType: "puzzle", StartDate: &start, Search: " ali ",
					MinScore: Ptr(0), MaxScore: Ptr(3000),
				},
				SortBy:    SortByRecent,
				SortOrder: SortAsc,
			},
			want: []string{
				"type:region", "country:US", "region:NA", "timeframe:weekly",
				"challengeType:puzzle", "startDate:2025-12-31T23:00:00Z", "search:ali",
				"minScore:0", "maxScore:3000", "sortBy:recent", "sortOrder:asc",
			},
		},
		{"unknown sort falls back silently", Query{SortBy: "elo", SortOrder: SortAsc}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppliedFilters(tt.q); !slices.Equal(got, tt.want) {
				t.Errorf("AppliedFilters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, wantLimit, wantPage int
	}{
		{-1, 1, 1},
		{0, 1, 1},
		{1, 1, 1},
		{50, 50, 50},
		{100, 100, 100},
		{101, 100, 101},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.wantLimit {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.wantLimit)
		}
		if got := ClampPage(tt.in); got != tt.wantPage {
			t.Errorf("ClampPage(%d) = %d, want %d", tt.in, got, tt.wantPage)
		}
	}
}
