package ranking

import (
	"strings"
)

// FieldWeights holds the points awarded per match tier for one text field.
type FieldWeights struct {
	Exact     int `json:"exact"`     // Whole value equals the term
	Prefix    int `json:"prefix"`    // Value starts with the term
	Substring int `json:"substring"` // Term appears anywhere in the value
}

// Weights holds all search match weights.
type Weights struct {
	Username    FieldWeights `json:"username"`
	DisplayName FieldWeights `json:"display_name"`
	UserID      int          `json:"user_id"` // User IDs only match as substrings
}

// DefaultWeights returns the default search match weights.
//
// Username outranks display name at every tier so that a player searching for
// a handle finds that handle first. User ID matches are a weak signal.
func DefaultWeights() *Weights {
	return &Weights{
		Username: FieldWeights{
			Exact:     100,
			Prefix:    80,
			Substring: 60,
		},
		DisplayName: FieldWeights{
			Exact:     90,
			Prefix:    70,
			Substring: 50,
		},
		UserID: 40,
	}
}

// FieldMatch returns the points for the highest tier of w that value matches.
//
// Parameters:
//   - value: The candidate field, already lowercased
//   - term: The search term, already trimmed and lowercased
//   - w: The tier weights for this field
//
// Returns 0 when either input is empty or nothing matches.
func FieldMatch(value, term string, w FieldWeights) int {
	if value == "" || term == "" {
		return 0
	}
	switch {
	case value == term:
		return w.Exact
	case strings.HasPrefix(value, term):
		return w.Prefix
	case strings.Contains(value, term):
		return w.Substring
	default:
		return 0
	}
}

// SubstringMatch returns points when value contains term, otherwise 0.
func SubstringMatch(value, term string, points int) int {
	if value == "" || term == "" {
		return 0
	}
	if strings.Contains(value, term) {
		return points
	}
	return 0
}
