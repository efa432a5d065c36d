// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// SyncTrigger requests a reconciliation cycle. *Reconciler implements it.
type SyncTrigger interface {
	Trigger(reason string) bool
}

// QuoteService orchestrates quote-related use cases.
// It depends on port interfaces, not concrete implementations.
//
// The store is authoritative: persistence failures are logged and the
// operation still succeeds.
type QuoteService struct {
	store      *domain.QuoteStore
	repository ports.QuoteRepository
	sessions   ports.SessionStore
	sync       SyncTrigger
	logger     *slog.Logger

	mu       sync.RWMutex
	selected string
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store      *domain.QuoteStore
	Repository ports.QuoteRepository
	Sessions   ports.SessionStore

	// Sync is notified after add and import. Optional.
	Sync SyncTrigger

	Logger *slog.Logger
}

// RandomQuery selects the candidate set for a random pick.
type RandomQuery struct {
	// SessionID receives the pick as its last viewed quote. Empty skips the write.
	SessionID string

	// Category overrides the selected category when OverrideCategory is set.
	Category         string
	OverrideCategory bool
}

// Categories lists distinct categories alongside the active filter.
type Categories struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if Store, Repository or Sessions is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	switch {
	case cfg.Store == nil:
		panic("QuoteService: Store is required")
	case cfg.Repository == nil:
		panic("QuoteService: Repository is required")
	case cfg.Sessions == nil:
		panic("QuoteService: Sessions is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:      cfg.Store,
		repository: cfg.Repository,
		sessions:   cfg.Sessions,
		sync:       cfg.Sync,
		logger:     logger.With(slog.String("component", "quote-service")),
	}
}

// Restore loads the persisted quotes and selected category.
// Missing or unreadable data leaves the seed list and no filter in place.
func (s *QuoteService) Restore(ctx context.Context) {
	quotes, ok, err := s.repository.ReadQuotes(ctx)
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "stored quotes unreadable, keeping defaults", slog.Any("error", err))
	case ok && s.store.Load(quotes):
		s.logger.InfoContext(ctx, "restored quotes", slog.Int("count", s.store.Len()))
	default:
		s.logger.InfoContext(ctx, "no stored quotes, using defaults", slog.Int("count", s.store.Len()))
	}

	category, ok, err := s.repository.ReadSelectedCategory(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "stored category unreadable", slog.Any("error", err))
		return
	}
	if ok {
		s.mu.Lock()
		s.selected = category
		s.mu.Unlock()
	}
}

// Random picks a quote uniformly from the candidate set and records it as the
// session's last viewed quote. Returns an EmptyResultError when no quote matches.
func (s *QuoteService) Random(ctx context.Context, q RandomQuery) (domain.Pick, error) {
	category := s.SelectedCategory()
	if q.OverrideCategory {
		category = strings.TrimSpace(q.Category)
	}

	pick, err := s.store.RandomPick(category)
	if err != nil {
		s.logger.DebugContext(ctx, "no quote to show", slog.String("category", category))
		return domain.Pick{}, err
	}

	if q.SessionID != "" {
		viewed := domain.LastViewed{Index: pick.Index, Quote: pick.Quote}
		if err := s.sessions.WriteLastViewed(ctx, q.SessionID, viewed); err != nil {
			s.logger.WarnContext(ctx, "last viewed not saved", slog.Any("error", err))
		}
	}

	return pick, nil
}

// Add appends a quote, persists the store and requests a sync.
func (s *QuoteService) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	quote, err := s.store.Add(text, category)
	if err != nil {
		return domain.Quote{}, err
	}

	s.logger.InfoContext(ctx, "quote added", slog.String("category", quote.Category))
	s.persist(ctx)
	s.requestSync(ReasonAdd)

	return quote, nil
}

// Import appends every well-shaped candidate, as decoded from an import file.
// Returns how many were imported.
func (s *QuoteService) Import(ctx context.Context, candidates []json.RawMessage) (int, error) {
	n, err := s.store.ImportBatch(candidates)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "quotes imported",
		slog.Int("imported", n),
		slog.Int("skipped", len(candidates)-n),
	)
	s.persist(ctx)
	s.requestSync(ReasonImport)

	return n, nil
}

// Export returns every quote in store order.
func (s *QuoteService) Export(_ context.Context) []domain.Quote {
	return s.store.Snapshot()
}

// List returns the quotes in category, or every quote when it is empty.
func (s *QuoteService) List(_ context.Context, category string) []domain.Quote {
	return s.store.Filter(strings.TrimSpace(category))
}

// Categories returns the distinct categories and the active filter.
func (s *QuoteService) Categories(_ context.Context) Categories {
	return Categories{
		Categories: s.store.DistinctCategories(),
		Selected:   s.SelectedCategory(),
	}
}

// SelectedCategory returns the active filter; empty means none.
func (s *QuoteService) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

// SelectCategory sets the active filter and persists it. Empty clears it.
// The category need not exist in the store.
func (s *QuoteService) SelectCategory(ctx context.Context, category string) string {
	category = strings.TrimSpace(category)

	s.mu.Lock()
	s.selected = category
	s.mu.Unlock()

	if err := s.repository.WriteSelectedCategory(ctx, category); err != nil {
		s.logger.WarnContext(ctx, "selected category not saved", slog.Any("error", err))
	}

	return category
}

// LastViewed returns the session's last random pick.
// Returns a NotFoundError when there is none.
func (s *QuoteService) LastViewed(ctx context.Context, sessionID string) (domain.LastViewed, error) {
	return s.sessions.ReadLastViewed(ctx, sessionID)
}

func (s *QuoteService) persist(ctx context.Context) {
	err := s.store.WriteThrough(func(quotes []domain.Quote) error {
		return s.repository.WriteQuotes(ctx, quotes)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "quotes not saved", slog.Any("error", err))
	}
}

func (s *QuoteService) requestSync(reason string) {
	if s.sync == nil {
		return
	}
	s.sync.Trigger(reason)
}
