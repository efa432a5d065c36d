// Package notify holds the transient notification surface: a single banner
// that replaces its predecessor and dismisses itself after a fixed interval.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// DefaultDismissAfter is used when no interval is configured.
const DefaultDismissAfter = 3 * time.Second

// View is the banner as shown to clients.
type View struct {
	Message   string                  `json:"message"`
	Level     ports.NotificationLevel `json:"level"`
	CreatedAt time.Time               `json:"createdAt"`
	ExpiresAt time.Time               `json:"expiresAt"`
}

// Banner implements ports.Notifier. Only the latest notification is kept.
type Banner struct {
	mu           sync.Mutex
	current      *View
	dismissAfter time.Duration
	logger       *slog.Logger

	// now returns the current time. Overridable for testing.
	now func() time.Time
}

// NewBanner creates a banner whose notifications expire after dismissAfter.
func NewBanner(dismissAfter time.Duration, logger *slog.Logger) *Banner {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Banner{
		dismissAfter: dismissAfter,
		logger:       logger.With(slog.String("component", "notify")),
		now:          time.Now,
	}
}

// Notify replaces the current banner.
func (b *Banner) Notify(ctx context.Context, n ports.Notification) {
	shown := b.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = shown
	}

	b.mu.Lock()
	b.current = &View{
		Message:   n.Message,
		Level:     n.Level,
		CreatedAt: n.CreatedAt,
		ExpiresAt: shown.Add(b.dismissAfter),
	}
	b.mu.Unlock()

	level := slog.LevelInfo
	if n.Level == ports.NotificationError {
		level = slog.LevelWarn
	}
	b.logger.Log(ctx, level, "notification", slog.String("message", n.Message))
}

// Current returns the live banner, or false once it has been dismissed.
func (b *Banner) Current() (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return View{}, false
	}

	if !b.now().Before(b.current.ExpiresAt) {
		b.current = nil
		return View{}, false
	}

	return *b.current, true
}

// Dismiss clears the banner immediately.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}
