package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// ErrInvalidCursor is returned when a cursor cannot be decoded or belongs to
// a different listing.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// NextCursor is the cursor to use for the next page.
	// Empty if there are no more items.
	NextCursor string `json:"nextCursor,omitempty"`

	// HasMore indicates whether there are more items after this page.
	HasMore bool `json:"hasMore"`

	// Total is the size of the full listing.
	Total int `json:"total"`
}

// CursorData is the position encoded in a cursor. Scope ties it to the
// filter it was issued for so it cannot be replayed against another listing.
type CursorData struct {
	Offset int    `json:"o"`
	Scope  string `json:"s"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data CursorData) string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a cursor issued for scope. An empty string is the first page.
func DecodeCursor(encoded, scope string) (CursorData, error) {
	if encoded == "" {
		return CursorData{Scope: scope}, nil
	}

	jsonBytes, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return CursorData{}, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return CursorData{}, ErrInvalidCursor
	}

	if data.Offset < 0 || data.Scope != scope {
		return CursorData{}, ErrInvalidCursor
	}

	return data, nil
}

// Paginate slices items into the page described by req within scope.
// Positions are stable while the listing only grows at the end; a sync merge
// reorders the store, after which clients should restart from the first page.
func Paginate[T any](items []T, req PaginationRequest, scope string) (*PaginatedResponse[T], error) {
	cursor, err := DecodeCursor(req.Cursor, scope)
	if err != nil {
		return nil, err
	}

	start := min(cursor.Offset, len(items))
	end := min(start+req.GetLimit(), len(items))

	page := &PaginatedResponse[T]{
		Items:   items[start:end],
		HasMore: end < len(items),
		Total:   len(items),
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	if page.HasMore {
		page.NextCursor = EncodeCursor(CursorData{Offset: end, Scope: scope})
	}

	return page, nil
}
