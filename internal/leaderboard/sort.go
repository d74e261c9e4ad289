package leaderboard

import (
	"cmp"
	"slices"
)

// Sort returns a new slice ordered by field in the given direction.
// The sort is stable: entries that compare equal keep their input order.
// Unknown fields fall back to score descending.
func Sort(entries []Entry, field SortField, order SortOrder) []Entry {
	field, order = normalizeSort(field, order)
	ascending := ascendingBy(field)

	out := cloneEntries(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		if order == SortAsc {
			return ascending(a, b)
		}
		return ascending(b, a)
	})
	return out
}

// ascendingBy returns the ascending comparator for field.
func ascendingBy(field SortField) func(a, b Entry) int {
	switch field {
	case SortByPuzzles:
		return func(a, b Entry) int { return cmp.Compare(a.TotalPuzzlesCompleted, b.TotalPuzzlesCompleted) }
	case SortByModules:
		return func(a, b Entry) int { return cmp.Compare(a.TotalModulesCompleted, b.TotalModulesCompleted) }
	case SortByCompletion:
		return func(a, b Entry) int { return cmp.Compare(a.CompletionPercentage, b.CompletionPercentage) }
	case SortByRecent:
		return func(a, b Entry) int { return a.LastActiveAt.Compare(b.LastActiveAt) }
	default:
		return func(a, b Entry) int { return cmp.Compare(a.Score, b.Score) }
	}
}

// canonicalCompare orders by score descending, then user ID ascending.
// It is a total order over distinct user IDs, which cursor pagination needs.
func canonicalCompare(a, b Entry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID, b.UserID)
}

// SortCanonical returns a new slice in canonical order.
func SortCanonical(entries []Entry) []Entry {
	out := cloneEntries(entries)
	slices.SortStableFunc(out, canonicalCompare)
	return out
}
