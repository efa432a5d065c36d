// Package session is the transient side of the persistence adapter.
// Values live in process memory, keyed by client session, and expire after
// a period of inactivity.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/adapters/quotefile"
	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// KeyLastViewed is the per-session key holding the latest random pick.
const KeyLastViewed = "lastViewed"

type lastViewedRecord struct {
	Index int              `json:"index"`
	Quote quotefile.Record `json:"quote"`
}

type entry struct {
	values   map[string][]byte
	lastSeen time.Time
}

// Store implements ports.SessionStore in memory with idle expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration

	// now returns the current time. Overridable for testing.
	now func() time.Time
}

// New creates a store whose sessions expire after ttl without a write or read.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WriteLastViewed records the most recent pick for sessionID.
func (s *Store) WriteLastViewed(_ context.Context, sessionID string, viewed domain.LastViewed) error {
	data, err := json.Marshal(lastViewedRecord{
		Index: viewed.Index,
		Quote: quotefile.Record{Text: viewed.Quote.Text, Category: viewed.Quote.Category},
	})
	if err != nil {
		return domain.NewPersistenceError("write", KeyLastViewed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.touch(sessionID)
	if e == nil {
		e = &entry{values: make(map[string][]byte), lastSeen: s.now()}
		s.sessions[sessionID] = e
	}
	e.values[KeyLastViewed] = data

	return nil
}

// ReadLastViewed returns the most recent pick for sessionID.
// Returns a NotFoundError when there is none or the session expired.
func (s *Store) ReadLastViewed(_ context.Context, sessionID string) (domain.LastViewed, error) {
	s.mu.Lock()
	e := s.touch(sessionID)
	var data []byte
	if e != nil {
		data = e.values[KeyLastViewed]
	}
	s.mu.Unlock()

	if data == nil {
		return domain.LastViewed{}, domain.NewNotFoundError(KeyLastViewed, sessionID)
	}

	var rec lastViewedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.LastViewed{}, domain.NewPersistenceError("read", KeyLastViewed, err)
	}

	return domain.LastViewed{
		Index: rec.Index,
		Quote: domain.Quote{Text: rec.Quote.Text, Category: rec.Quote.Category},
	}, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// touch returns the live entry for id, refreshing its idle timer, or nil
// when absent or expired. Must be called with the lock held.
func (s *Store) touch(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		return nil
	}

	now := s.now()
	if now.Sub(e.lastSeen) >= s.ttl {
		delete(s.sessions, id)
		return nil
	}

	e.lastSeen = now
	return e
}
