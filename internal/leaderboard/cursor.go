package leaderboard

import (
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Cursor identifies a resumption point in canonical order
// (score descending, user ID ascending).
type Cursor struct {
	Score  int    `cbor:"1,keyasint"`
	UserID string `cbor:"2,keyasint"`
}

// CursorRequest is the input of cursor-mode pagination.
type CursorRequest struct {
	Cursor  string    `json:"cursor,omitempty"`
	Limit   int       `json:"limit"`
	Filters *Criteria `json:"filters,omitempty"`
}

// CursorPage is one cursor-mode page. Entries carry no rank.
type CursorPage struct {
	Data       []Entry `json:"data"`
	NextCursor string  `json:"nextCursor,omitempty"`
	PrevCursor string  `json:"prevCursor,omitempty"`
	HasNext    bool    `json:"hasNext"`
	HasPrev    bool    `json:"hasPrev"`

	// CursorReset is set when the supplied cursor no longer matched any
	// entry and the page restarted from the beginning of canonical order.
	CursorReset bool `json:"cursorReset,omitempty"`
}

var (
	cursorEncMode cbor.EncMode
	cursorDecMode cbor.DecMode
)

func init() {
	var err error
	cursorEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("leaderboard: cursor encoder: %v", err))
	}
	cursorDecMode, err = cbor.DecOptions{
		MaxNestedLevels:  4,
		MaxArrayElements: 16,
		MaxMapPairs:      16,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("leaderboard: cursor decoder: %v", err))
	}
}

// CursorFor returns the cursor of e.
func CursorFor(e Entry) Cursor {
	return Cursor{Score: e.Score, UserID: e.UserID}
}

// EncodeCursor serializes c into an opaque, URL-safe token.
func EncodeCursor(c Cursor) (string, error) {
	data, err := cursorEncMode.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses a token produced by EncodeCursor.
// Any malformed token yields an error wrapping ErrInvalidCursor.
func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := cursorDecMode.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.UserID == "" {
		return Cursor{}, fmt.Errorf("%w: missing user id", ErrInvalidCursor)
	}
	return c, nil
}

// PaginateByCursor returns the page following req.Cursor in canonical order,
// after applying req.Filters when present. A cursor whose entry is no longer
// in the view restarts from the beginning and sets CursorReset.
func (e *Engine) PaginateByCursor(entries []Entry, req CursorRequest) (*CursorPage, error) {
	limit := ClampLimit(req.Limit)

	var after *Cursor
	if req.Cursor != "" {
		c, err := DecodeCursor(req.Cursor)
		if err != nil {
			return nil, err
		}
		after = &c
	}

	view := entries
	if req.Filters != nil {
		view = e.Filter(entries, *req.Filters)
	}
	ordered := SortCanonical(view)

	start := 0
	reset := false
	if after != nil {
		// Last match, so a snapshot repeating a user cannot loop the chain.
		idx := lastIndexFunc(ordered, func(en Entry) bool {
			return en.UserID == after.UserID && en.Score == after.Score
		})
		if idx < 0 {
			reset = true
		} else {
			start = idx + 1
		}
	}
	end := min(start+limit, len(ordered))

	data := make([]Entry, 0, end-start)
	for _, entry := range ordered[start:end] {
		entry.Rank = 0
		data = append(data, entry)
	}

	page := &CursorPage{
		Data:        data,
		HasNext:     end < len(ordered),
		HasPrev:     start > 0,
		CursorReset: reset,
	}

	if page.HasNext {
		next, err := EncodeCursor(CursorFor(ordered[end-1]))
		if err != nil {
			return nil, err
		}
		page.NextCursor = next
	}
	if page.HasPrev {
		prev, err := EncodeCursor(CursorFor(ordered[start-1]))
		if err != nil {
			return nil, err
		}
		page.PrevCursor = prev
	}

	return page, nil
}

func lastIndexFunc(entries []Entry, match func(Entry) bool) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if match(entries[i]) {
			return i
		}
	}
	return -1
}
