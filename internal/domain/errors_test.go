package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_MessagesAndSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		sentinel error
	}{
		{"not found with id", NewNotFoundError("session", "3f1c9a1e"), `session with id "3f1c9a1e" not found`, ErrNotFound},
		{"not found without id", NewNotFoundError("last viewed quote", ""), "last viewed quote not found", ErrNotFound},
		{"conflict", NewConflictError("sync", "cycle already in progress"), "sync conflict: cycle already in progress", ErrConflict},
		{"validation with field", NewValidationError("text", "must not be empty"), "validation failed for text: must not be empty", ErrValidation},
		{"validation of document", NewValidationError("", "invalid JSON structure"), "validation failed: invalid JSON structure", ErrValidation},
		{"empty for filter", NewEmptyResultError("Life"), "no quotes found for category: Life", ErrEmptyResult},
		{"empty store", NewEmptyResultError(""), "no quotes available", ErrEmptyResult},
		{"persistence with cause", NewPersistenceError("write", "quotes", errors.New("disk full")), `write "quotes": disk full`, ErrPersistence},
		{"persistence without cause", NewPersistenceError("read", "selectedCategory", nil), `read "selectedCategory" failed`, ErrPersistence},
		{"transport with status", NewTransportStatusError("quote-remote", "fetch quotes", 502, "remote unavailable"), "quote-remote fetch quotes: HTTP 502: remote unavailable", ErrTransport},
		{"transport without status", NewTransportError("quote-remote", "push quotes", "circuit breaker open"), "quote-remote push quotes: circuit breaker open", ErrTransport},
	}

	all := []error{ErrNotFound, ErrConflict, ErrValidation, ErrEmptyResult, ErrPersistence, ErrTransport}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			for _, s := range all {
				assert.Equal(t, s == tt.sentinel, errors.Is(tt.err, s), "errors.Is(%q)", s)
			}
		})
	}
}

func TestPersistenceError_ExposesCause(t *testing.T) {
	err := fmt.Errorf("saving quotes: %w", NewPersistenceError("write", "quotes", sql.ErrConnDone))

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "quotes", pe.Key)
}

func TestValidationError_Fields(t *testing.T) {
	var ve *ValidationError
	require.ErrorAs(t, fmt.Errorf("import: %w", NewValidationError("category", "must be a single line")), &ve)

	assert.Equal(t, "category", ve.Field)
	assert.Equal(t, "must be a single line", ve.Message)
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name string
		is   func(error) bool
		yes  error
		no   error
	}{
		{"IsNotFound", IsNotFound, NewNotFoundError("session", "1"), ErrConflict},
		{"IsConflict", IsConflict, fmt.Errorf("sync now: %w", ErrConflict), ErrNotFound},
		{"IsValidation", IsValidation, NewValidationError("text", "empty"), ErrTransport},
		{"IsEmptyResult", IsEmptyResult, ErrEmptyResult, ErrValidation},
		{"IsPersistence", IsPersistence, fmt.Errorf("restore: %w", NewPersistenceError("read", "quotes", nil)), ErrEmptyResult},
		{"IsTransport", IsTransport, fmt.Errorf("sync: %w", NewTransportError("quote-remote", "fetch quotes", "refused")), ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.yes))
			assert.False(t, tt.is(tt.no))
			assert.False(t, tt.is(nil))
		})
	}
}
