package leaderboard

import (
	"strconv"
	"time"
)

// Meta describes an offset-mode page.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Filters reports which filters shaped a result and which are available.
type Filters struct {
	Applied   []string      `json:"applied"`
	Available FilterOptions `json:"available"`
}

// Result is the offset-mode response.
type Result struct {
	Data        []Entry   `json:"data"`
	Meta        Meta      `json:"meta"`
	Filters     Filters   `json:"filters"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Paginate slices a sorted view into one page and assigns page-local ranks.
// page and limit are clamped; an offset past the end yields an empty page.
func Paginate(entries []Entry, page, limit int) ([]Entry, Meta) {
	page = ClampPage(page)
	limit = ClampLimit(limit)

	total := len(entries)
	totalPages := (total + limit - 1) / limit

	data := []Entry{}
	// Compared in page space so (page-1)*limit is only computed when it is
	// bounded by total.
	if page <= totalPages {
		offset := (page - 1) * limit
		end := min(offset+limit, total)
		data = make([]Entry, 0, end-offset)
		for i, entry := range entries[offset:end] {
			entry.Rank = offset + i + 1
			data = append(data, entry)
		}
	}

	return data, Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// AppliedFilters lists a "field:value" token for every non-default parameter
// of q, in a fixed order. Page and limit are pagination, not filters.
func AppliedFilters(q Query) []string {
	q = q.Normalize()
	applied := []string{}

	add := func(field, value string) {
		applied = append(applied, field+":"+value)
	}

	if q.Type != ScopeGlobal {
		add("type", string(q.Type))
	}
	if q.Country != "" {
		add("country", q.Country)
	}
	if q.Region != "" {
		add("region", q.Region)
	}
	if q.Timeframe != "" && q.Timeframe != TimeframeAllTime {
		add("timeframe", q.Timeframe)
	}
	if q.ChallengeType != "" {
		add("challengeType", q.ChallengeType)
	}
	if q.StartDate != nil {
		add("startDate", q.StartDate.UTC().Format(time.RFC3339))
	}
	if q.EndDate != nil {
		add("endDate", q.EndDate.UTC().Format(time.RFC3339))
	}
	if q.Search != "" {
		add("search", q.Search)
	}
	if q.MinScore != nil {
		add("minScore", strconv.Itoa(*q.MinScore))
	}
	if q.MaxScore != nil {
		add("maxScore", strconv.Itoa(*q.MaxScore))
	}
	if q.SortBy != SortByScore {
		add("sortBy", string(q.SortBy))
	}
	if q.SortOrder != SortDesc {
		add("sortOrder", string(q.SortOrder))
	}

	return applied
}
