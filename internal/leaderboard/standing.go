package leaderboard

// Standing is a player's position within one query's filtered, sorted view.
// Like the offset-mode rank it is not a global ranking.
type Standing struct {
	UserID     string  `json:"userId"`
	Rank       int     `json:"rank"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentile float64 `json:"percentile"` // Share of the view at or below this player
	Page       int     `json:"page"`       // Offset-mode page containing the player at q's limit
}

// Standing locates userID in the view q would produce. Pagination fields of
// q only determine Page. Returns ErrUserNotFound when the user is filtered
// out or absent from the snapshot.
func (e *Engine) Standing(entries []Entry, userID string, q Query) (Standing, error) {
	q = q.Normalize()

	limit := *q.Limit
	view := Sort(e.Filter(entries, q.Criteria), q.SortBy, q.SortOrder)
	for i, entry := range view {
		if entry.UserID != userID {
			continue
		}
		rank := i + 1
		total := len(view)
		return Standing{
			UserID:     entry.UserID,
			Rank:       rank,
			Score:      entry.Score,
			Total:      total,
			Percentile: float64(total-rank+1) / float64(total) * 100,
			Page:       i/limit + 1,
		}, nil
	}
	return Standing{}, ErrUserNotFound
}
