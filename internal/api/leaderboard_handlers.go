package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/validate"
)

// LeaderboardHandlers serves the leaderboard query endpoints.
type LeaderboardHandlers struct {
	service *leaderboard.Service
	logger  *slog.Logger
}

// NewLeaderboardHandlers creates handlers bound to a service.
func NewLeaderboardHandlers(service *leaderboard.Service, logger *slog.Logger) *LeaderboardHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardHandlers{
		service: service,
		logger:  logger,
	}
}

// SearchResponse is the body of GET /leaderboard/search.
type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []leaderboard.SearchHit `json:"results"`
	Count   int                     `json:"count"`
}

// paramError is a query parameter that failed to parse.
type paramError struct {
	name   string
	reason string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.name, e.reason)
}

// GetLeaderboard handles GET /leaderboard (offset mode).
func (h *LeaderboardHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	result, err := h.service.Leaderboard(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, result)
}

// GetLeaderboardCursor handles GET /leaderboard/cursor (cursor mode).
func (h *LeaderboardHandlers) GetLeaderboardCursor(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	limit, err := optionalInt(values, "limit")
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	criteria, err := parseCriteria(values)
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	req := leaderboard.CursorRequest{
		Cursor: values.Get("cursor"),
		Limit:  leaderboard.DefaultLimit,
	}
	if limit != nil {
		req.Limit = *limit
	}
	if hasCriteria(values) {
		req.Filters = &criteria
	}

	page, err := h.service.Cursor(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, page)
}

// SearchLeaderboard handles GET /leaderboard/search?q=&limit=.
func (h *LeaderboardHandlers) SearchLeaderboard(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	term, err := validate.SearchTerm(values.Get("q"))
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "invalid q: "+err.Error())
		return
	}

	limit, err := optionalInt(values, "limit")
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	hits, err := h.service.Search(r.Context(), term, n)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, SearchResponse{
		Query:   term,
		Results: hits,
		Count:   len(hits),
	})
}

// GetFilterOptions handles GET /leaderboard/filters.
func (h *LeaderboardHandlers) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, opts)
}

// GetUserStanding handles GET /leaderboard/users/{userId}. Query parameters
// select the view the standing is computed in, as for GET /leaderboard.
func (h *LeaderboardHandlers) GetUserStanding(w http.ResponseWriter, r *http.Request) {
	userID, err := validate.UserID(mux.Vars(r)["userId"])
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "invalid userId: "+err.Error())
		return
	}

	q, err := parseQuery(r.URL.Query())
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	standing, err := h.service.Standing(r.Context(), userID, q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, standing)
}

// writeServiceError maps service errors onto the error envelope.
func (h *LeaderboardHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, leaderboard.ErrInvalidCursor):
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidCursor, "Cursor is malformed or was not issued by this service")
	case errors.Is(err, leaderboard.ErrUserNotFound):
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "User not found in this leaderboard view")
	case errors.Is(err, leaderboard.ErrSnapshotUnavailable):
		h.logger.ErrorContext(ctx, "snapshot unavailable", "error", err)
		WriteError(w, ctx, http.StatusServiceUnavailable, ErrCodeUnavailable, "Leaderboard data is temporarily unavailable")
	default:
		h.logger.ErrorContext(ctx, "leaderboard query failed", "error", err)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
	}
}

// criteriaParams are the query parameters that make up a filter.
var criteriaParams = []string{
	"type", "country", "region", "timeframe", "challengeType",
	"startDate", "endDate", "search", "minScore", "maxScore",
}

func hasCriteria(values url.Values) bool {
	for _, name := range criteriaParams {
		if values.Get(name) != "" {
			return true
		}
	}
	return false
}

// parseQuery builds an offset-mode query from URL parameters. Values are
// not clamped here; the engine normalizes them.
func parseQuery(values url.Values) (leaderboard.Query, error) {
	var q leaderboard.Query
	var err error

	if q.Page, err = optionalInt(values, "page"); err != nil {
		return q, err
	}
	if q.Limit, err = optionalInt(values, "limit"); err != nil {
		return q, err
	}
	if q.Criteria, err = parseCriteria(values); err != nil {
		return q, err
	}
	q.SortBy = leaderboard.SortField(values.Get("sortBy"))
	q.SortOrder = leaderboard.SortOrder(values.Get("sortOrder"))
	return q, nil
}

func parseCriteria(values url.Values) (leaderboard.Criteria, error) {
	c := leaderboard.Criteria{
		Type:          leaderboard.Scope(values.Get("type")),
		Timeframe:     values.Get("timeframe"),
		ChallengeType: values.Get("challengeType"),
	}

	var err error
	if c.Country, err = validate.Location(values.Get("country")); err != nil {
		return c, &paramError{name: "country", reason: err.Error()}
	}
	if c.Region, err = validate.Location(values.Get("region")); err != nil {
		return c, &paramError{name: "region", reason: err.Error()}
	}
	if c.Search, err = validate.SearchTerm(values.Get("search")); err != nil {
		return c, &paramError{name: "search", reason: err.Error()}
	}
	if c.StartDate, err = optionalTime(values, "startDate"); err != nil {
		return c, err
	}
	if c.EndDate, err = optionalTime(values, "endDate"); err != nil {
		return c, err
	}
	if c.MinScore, err = optionalInt(values, "minScore"); err != nil {
		return c, err
	}
	if c.MaxScore, err = optionalInt(values, "maxScore"); err != nil {
		return c, err
	}
	return c, nil
}

func optionalInt(values url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, reason: "must be an integer"}
	}
	return &v, nil
}

func optionalTime(values url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &paramError{name: name, reason: "must be an RFC 3339 timestamp"}
	}
	return &t, nil
}
