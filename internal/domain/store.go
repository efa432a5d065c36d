package domain

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"sync"
)

// QuoteStore owns the canonical ordered list of quotes.
// It is constructed once at startup and passed to every component that needs it.
// All methods are safe for concurrent use.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []Quote

	// writeMu orders WriteThrough calls. It is never taken while holding mu.
	writeMu sync.Mutex

	// intn returns a value in [0, n). Overridable for testing.
	intn func(n int) int
}

// NewQuoteStore creates a store seeded with DefaultQuotes.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: DefaultQuotes(),
		intn:   rand.IntN,
	}
}

// Load replaces the contents wholesale with persisted when it is a non-empty
// sequence of valid quotes. Anything else counts as "no data" and the current
// contents (the seed list at startup) are kept. Reports whether it replaced.
func (s *QuoteStore) Load(persisted []Quote) bool {
	if len(persisted) == 0 {
		return false
	}

	for _, q := range persisted {
		if !q.Valid() {
			return false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = slices.Clone(persisted)

	return true
}

// Add appends a new quote after trimming both fields.
// Returns a ValidationError and leaves the store unchanged when either is blank.
func (s *QuoteStore) Add(text, category string) (Quote, error) {
	q, err := NewQuote(text, category)
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, q)

	return q, nil
}

// ImportBatch appends every candidate shaped as {text, category} and returns
// how many were appended. Returns a ValidationError when none qualify.
func (s *QuoteStore) ImportBatch(candidates []json.RawMessage) (int, error) {
	valid := make([]Quote, 0, len(candidates))

	for _, raw := range candidates {
		if res := CheckShape(raw); res.Valid {
			valid = append(valid, res.Quote)
		}
	}

	if len(valid) == 0 {
		return 0, NewValidationError("quotes", "no valid quotes found")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append(s.quotes, valid...)

	return len(valid), nil
}

// MergeFromRemote replaces the contents with remote, in remote order, followed
// by every local quote whose text matches no remote text, in local order.
// This is a right-biased union keyed on text. It is idempotent for an identical
// remote but neither commutative nor associative across different snapshots.
func (s *QuoteStore) MergeFromRemote(remote []Quote) {
	remoteTexts := make(map[string]struct{}, len(remote))
	for _, q := range remote {
		remoteTexts[q.Text] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Quote, 0, len(remote)+len(s.quotes))
	merged = append(merged, remote...)

	for _, q := range s.quotes {
		if _, ok := remoteTexts[q.Text]; !ok {
			merged = append(merged, q)
		}
	}

	s.quotes = merged
}

// RandomPick returns a uniformly random quote among those in category, or
// among all quotes when category is empty. Each call is independent.
// Returns an EmptyResultError when there are no candidates.
func (s *QuoteStore) RandomPick(category string) (Pick, error) {
	candidates := s.Filter(category)
	if len(candidates) == 0 {
		return Pick{}, NewEmptyResultError(category)
	}

	i := s.intn(len(candidates))

	return Pick{Quote: candidates[i], Index: i}, nil
}

// Filter returns the quotes in category, or a copy of all quotes when empty.
func (s *QuoteStore) Filter(category string) []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == "" {
		return slices.Clone(s.quotes)
	}

	out := make([]Quote, 0, len(s.quotes))

	for _, q := range s.quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// DistinctCategories returns categories in first-seen order without duplicates.
func (s *QuoteStore) DistinctCategories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.quotes))
	out := make([]string, 0, len(s.quotes))

	for _, q := range s.quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	return out
}

// Snapshot returns a copy of the current contents.
func (s *QuoteStore) Snapshot() []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// WriteThrough takes a snapshot and passes it to write, one caller at a time.
// Because the snapshot is taken after any earlier write has returned, the
// last write to finish always carries the newest contents.
func (s *QuoteStore) WriteThrough(write func([]Quote) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return write(s.Snapshot())
}

// Len returns the number of quotes in the store.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}
