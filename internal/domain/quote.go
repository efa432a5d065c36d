// Package domain contains core business entities and rules.
package domain

import "strings"

// DefaultCategoryLabel is used for remote quotes that carry no usable category.
const DefaultCategoryLabel = "Server"

// Quote is a text/category pair, the atomic unit of the store.
// Quotes have no identity field; merge equality is defined by Text alone.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// Text is the quotation itself. Never empty.
	Text string

	// Category groups quotes for filtering. Never empty.
	Category string
}

// NewQuote trims both fields and returns a validated Quote.
// Returns a ValidationError when either field is blank.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	if category == "" {
		return Quote{}, NewValidationError("category", "must not be empty")
	}

	return Quote{Text: text, Category: category}, nil
}

// Valid reports whether the quote satisfies the store invariant.
func (q Quote) Valid() bool {
	return strings.TrimSpace(q.Text) != "" && strings.TrimSpace(q.Category) != ""
}

// DefaultQuotes returns a fresh copy of the built-in seed list.
func DefaultQuotes() []Quote {
	return []Quote{
		{Text: "The best way to get started is to quit talking and begin doing.", Category: "Motivation"},
		{Text: "Life is what happens when you're busy making other plans.", Category: "Life"},
		{Text: "Don’t let yesterday take up too much of today.", Category: "Inspiration"},
	}
}

// Pick is the result of a random selection.
type Pick struct {
	Quote Quote

	// Index is the position of Quote within the filtered candidate set.
	Index int
}

// LastViewed is the session-scoped record of the most recent pick.
type LastViewed struct {
	Index int
	Quote Quote
}
