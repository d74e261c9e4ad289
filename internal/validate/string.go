// Package validate checks user-supplied query parameters before they reach
// the leaderboard engine.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
)

// Length limits for leaderboard parameters.
const (
	MaxSearchTermLength = 100
	MaxUserIDLength     = 128
	MaxLocationLength   = 64
)

// locationPattern admits country codes and region names such as "US",
// "EU" or "north-america".
var locationPattern = regexp.MustCompile(`^[\p{L}0-9 _\-\.]+$`)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length in runes (0 = no minimum)
	MaxLength      int            // Maximum length in runes (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
	NoControl      bool           // Reject control characters
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidCharacters)
	}

	// Rune count, not byte count.
	length := utf8.RuneCountInString(s)
	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}
	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.NoControl && strings.ContainsFunc(s, unicode.IsControl) {
		return "", fmt.Errorf("%w: control characters are not allowed", ErrInvalidCharacters)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// SearchTerm validates a free-text search term:
// - Optional (can be empty)
// - Max 100 characters
// - No control characters
func SearchTerm(term string) (string, error) {
	return String(term, StringConstraints{
		MaxLength:  MaxSearchTermLength,
		AllowEmpty: true,
		TrimSpace:  true,
		NoControl:  true,
	})
}

// UserID validates a user identifier taken from a path segment:
// - Required
// - Max 128 characters
// - No control characters
func UserID(id string) (string, error) {
	return String(id, StringConstraints{
		MinLength: 1,
		MaxLength: MaxUserIDLength,
		TrimSpace: true,
		NoControl: true,
	})
}

// Location validates a country or region filter value:
// - Optional (can be empty)
// - Max 64 characters
// - Letters, digits, spaces, dash, underscore, period only
func Location(value string) (string, error) {
	return String(value, StringConstraints{
		MaxLength:      MaxLocationLength,
		AllowedPattern: locationPattern,
		AllowEmpty:     true,
		TrimSpace:      true,
	})
}
