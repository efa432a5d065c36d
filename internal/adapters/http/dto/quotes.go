package dto

import (
	"time"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// QuoteResponse is a quote on the wire.
type QuoteResponse struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Category: q.Category}
}

// NewQuoteResponses converts a slice of domain quotes.
func NewQuoteResponses(qs []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(qs))
	for i, q := range qs {
		out[i] = NewQuoteResponse(q)
	}
	return out
}

// PickResponse is a random pick and its position within the candidate set.
type PickResponse struct {
	Quote QuoteResponse `json:"quote"`
	Index int           `json:"index"`
}

// AddQuoteRequest is the body of POST /api/v1/quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"notblank"`
	Category string `json:"category" validate:"notblank"`
}

// ListQuotesRequest is the query of GET /api/v1/quotes.
type ListQuotesRequest struct {
	PaginationRequest

	Category string `form:"category"`
}

// ImportResponse reports how many quotes an import appended.
type ImportResponse struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// SelectCategoryRequest is the body of PUT /api/v1/categories/selected.
// An empty category clears the filter.
type SelectCategoryRequest struct {
	Category string `json:"category"`
}

// CategoriesResponse lists distinct categories and the active filter.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// NotificationResponse is the live banner.
type NotificationResponse struct {
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	ExpiresAt time.Time `json:"expiresAt"`
}
