// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrPersistence, ErrTransport, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// QuoteRepository is the durable key-value side of the persistence adapter.
// It is pure translation: no business rules live behind it.
type QuoteRepository interface {
	// WriteQuotes persists the full quote list under the "quotes" key.
	// Returns domain.ErrPersistence on storage failure.
	WriteQuotes(ctx context.Context, quotes []domain.Quote) error

	// ReadQuotes returns the persisted quote list.
	// ok is false when nothing has been persisted yet.
	// Returns domain.ErrPersistence when the stored value cannot be read or decoded.
	ReadQuotes(ctx context.Context) (quotes []domain.Quote, ok bool, err error)

	// WriteSelectedCategory persists the active filter. Empty clears the filter.
	WriteSelectedCategory(ctx context.Context, category string) error

	// ReadSelectedCategory returns the persisted filter.
	// ok is false when nothing has been persisted yet.
	ReadSelectedCategory(ctx context.Context) (category string, ok bool, err error)
}

// SessionStore is the transient, session-scoped side of the persistence adapter.
type SessionStore interface {
	// WriteLastViewed records the most recent pick for a session.
	WriteLastViewed(ctx context.Context, sessionID string, viewed domain.LastViewed) error

	// ReadLastViewed returns the most recent pick for a session.
	// Returns domain.ErrNotFound when the session has none or has expired.
	ReadLastViewed(ctx context.Context, sessionID string) (domain.LastViewed, error)
}

// RemoteQuoteSource is the contract for the uncontrolled remote quote endpoint.
// Adapters own the field mapping from the remote shape to domain quotes.
type RemoteQuoteSource interface {
	// FetchQuotes reads the remote collection and returns it mapped to domain quotes,
	// capped at the adapter's fixed bound.
	// Returns domain.ErrTransport on transport failure or non-success status.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// PushQuotes sends the full local collection to the remote endpoint.
	// Any 2xx is success; anything else returns domain.ErrTransport.
	PushQuotes(ctx context.Context, quotes []domain.Quote) error
}

// NotificationLevel is the visual state of a notification.
type NotificationLevel string

const (
	// NotificationSuccess marks a successful outcome.
	NotificationSuccess NotificationLevel = "success"

	// NotificationError marks a failed outcome.
	NotificationError NotificationLevel = "error"
)

// Notification is a single-line transient message for the user.
type Notification struct {
	Message   string
	Level     NotificationLevel
	CreatedAt time.Time
}

// Notifier publishes transient user-facing notifications.
// Implementations auto-dismiss messages after a fixed interval.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
