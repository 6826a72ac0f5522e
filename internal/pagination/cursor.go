package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a keyset position: rows are ordered by (created_at, id).
type Cursor struct {
	CreatedAt time.Time `json:"ts"`
	ID        string    `json:"id"`
}

// Encode renders the cursor as an opaque url-safe token.
func Encode(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token produced by Encode. An empty token yields nil.
func Decode(token string) (*Cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" || c.CreatedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}

// Page is a slice of results plus the token for the next slice.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Build trims a limit+1 result set and derives the next cursor from the last kept row.
func Build[T any](rows []T, limit int, cursorOf func(T) Cursor) Page[T] {
	page := Page[T]{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		page.HasMore = true
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.HasMore && len(page.Items) > 0 {
		page.NextCursor = Encode(cursorOf(page.Items[len(page.Items)-1]))
	}
	return page
}

// Limit parses a limit query value, applying a default and an upper bound.
func Limit(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}

// Offset is page-number pagination for listings that report a total.
type Offset struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Skip is the number of rows before the page.
func (o Offset) Skip() int {
	return (o.Page - 1) * o.Limit
}

// ParseOffset reads page and limit values; page defaults to 1.
func ParseOffset(rawPage, rawLimit string, def, max int) (Offset, error) {
	limit, err := Limit(rawLimit, def, max)
	if err != nil {
		return Offset{}, err
	}
	page := 1
	if p := strings.TrimSpace(rawPage); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil || page <= 0 {
			return Offset{}, errors.New("page must be a positive integer")
		}
	}
	return Offset{Page: page, Limit: limit}, nil
}
