package leaderboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/onnwee/leaderboard/internal/ranking"
)

// DefaultSearchLimit is used when Search is called with a non-positive limit.
const DefaultSearchLimit = 10

// SearchHit is a search result: the entry plus its match score.
type SearchHit struct {
	Entry
	MatchScore int `json:"matchScore"`
}

// Search scores every entry against term and returns the best matches,
// ordered by match score then leaderboard score, both descending.
// A blank term returns no results rather than everything.
func (e *Engine) Search(entries []Entry, term string, limit int) []SearchHit {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []SearchHit{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	hits := make([]SearchHit, 0)
	for _, entry := range entries {
		score := MatchScore(entry, term, e.weights)
		if score == 0 {
			continue
		}
		entry.Rank = 0
		hits = append(hits, SearchHit{Entry: entry, MatchScore: score})
	}

	slices.SortStableFunc(hits, func(a, b SearchHit) int {
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		return cmp.Compare(b.Score, a.Score)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// MatchScore computes the additive match score of entry for a lowercased,
// trimmed term. Username and display name each contribute their highest
// matching tier; a user ID substring match adds on top.
func MatchScore(entry Entry, term string, w *ranking.Weights) int {
	if w == nil {
		w = ranking.DefaultWeights()
	}
	score := ranking.FieldMatch(strings.ToLower(entry.Username), term, w.Username)
	score += ranking.FieldMatch(strings.ToLower(entry.DisplayName), term, w.DisplayName)
	score += ranking.SubstringMatch(strings.ToLower(entry.UserID), term, w.UserID)
	return score
}
