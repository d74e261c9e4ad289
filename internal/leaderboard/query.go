package leaderboard

import (
	"strings"
	"time"
)

// Pagination bounds shared by offset and cursor modes.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Scope selects which geography dimension, if any, the query is restricted to.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeCountry Scope = "country"
	ScopeRegion  Scope = "region"
)

// SortField names the metric used to order a result set.
type SortField string

const (
	SortByScore      SortField = "score"
	SortByPuzzles    SortField = "puzzles"
	SortByModules    SortField = "modules"
	SortByCompletion SortField = "completion"
	SortByRecent     SortField = "recent"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// Timeframe names understood by the filter engine and listed in facet catalogs.
const (
	TimeframeDaily   = "daily"
	TimeframeWeekly  = "weekly"
	TimeframeMonthly = "monthly"
	TimeframeAllTime = "all_time"
)

// Criteria holds the filter clauses of a query. Every field is optional and
// every clause is independent of the others.
type Criteria struct {
	Type          Scope      `json:"type,omitempty"`
	Country       string     `json:"country,omitempty"`
	Region        string     `json:"region,omitempty"`
	Timeframe     string     `json:"timeframe,omitempty"`
	ChallengeType string     `json:"challengeType,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	Search        string     `json:"search,omitempty"`
	MinScore      *int       `json:"minScore,omitempty"`
	MaxScore      *int       `json:"maxScore,omitempty"`
}

// Query describes one offset-mode leaderboard request.
// Nil Page and Limit mean "use the default"; explicit values are clamped.
type Query struct {
	Page  *int `json:"page,omitempty"`
	Limit *int `json:"limit,omitempty"`
	Criteria
	SortBy    SortField `json:"sortBy,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty"`
}

// Ptr returns a pointer to v. Handy for populating optional query fields.
func Ptr[T any](v T) *T {
	return &v
}

// Normalize returns a copy of q with defaults applied and every value clamped
// into range. The result always has non-nil Page and Limit.
func (q Query) Normalize() Query {
	page := DefaultPage
	if q.Page != nil {
		page = ClampPage(*q.Page)
	}
	limit := DefaultLimit
	if q.Limit != nil {
		limit = ClampLimit(*q.Limit)
	}
	q.Page = &page
	q.Limit = &limit

	q.Criteria = q.Criteria.normalize()
	q.SortBy, q.SortOrder = normalizeSort(q.SortBy, q.SortOrder)
	return q
}

// PageNumber returns the effective page of a normalized or raw query.
func (q Query) PageNumber() int {
	if q.Page == nil {
		return DefaultPage
	}
	return ClampPage(*q.Page)
}

// PageSize returns the effective limit of a normalized or raw query.
func (q Query) PageSize() int {
	if q.Limit == nil {
		return DefaultLimit
	}
	return ClampLimit(*q.Limit)
}

func (c Criteria) normalize() Criteria {
	switch Scope(strings.ToLower(string(c.Type))) {
	case ScopeCountry:
		c.Type = ScopeCountry
	case ScopeRegion:
		c.Type = ScopeRegion
	default:
		c.Type = ScopeGlobal
	}
	c.Country = strings.TrimSpace(c.Country)
	c.Region = strings.TrimSpace(c.Region)
	c.Timeframe = strings.ToLower(strings.TrimSpace(c.Timeframe))
	c.ChallengeType = strings.ToLower(strings.TrimSpace(c.ChallengeType))
	c.Search = strings.TrimSpace(c.Search)
	return c
}

// normalizeSort maps unknown sort fields to score descending.
func normalizeSort(field SortField, order SortOrder) (SortField, SortOrder) {
	switch SortField(strings.ToLower(string(field))) {
	case "", SortByScore:
		field = SortByScore
	case SortByPuzzles:
		field = SortByPuzzles
	case SortByModules:
		field = SortByModules
	case SortByCompletion:
		field = SortByCompletion
	case SortByRecent:
		field = SortByRecent
	default:
		return SortByScore, SortDesc
	}

	if SortOrder(strings.ToLower(string(order))) == SortAsc {
		return field, SortAsc
	}
	return field, SortDesc
}

// ClampPage maps any page below 1 to 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampLimit clamps limit into [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
