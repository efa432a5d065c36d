package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(ttl)
	s.now = clock.now
	return s, clock
}

var viewed = domain.LastViewed{Index: 2, Quote: domain.Quote{Text: "Stay", Category: "Life"}}

func TestStore_LastViewedRoundTrip(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.WriteLastViewed(ctx, "a", viewed))

	got, err := s.ReadLastViewed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, viewed, got)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.WriteLastViewed(ctx, "a", viewed))

	_, err := s.ReadLastViewed(ctx, "b")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_Expiry(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.WriteLastViewed(ctx, "a", viewed))

	clock.advance(50 * time.Second)
	_, err := s.ReadLastViewed(ctx, "a")
	require.NoError(t, err, "read refreshes the idle timer")

	clock.advance(50 * time.Second)
	_, err = s.ReadLastViewed(ctx, "a")
	require.NoError(t, err)

	clock.advance(time.Minute)
	_, err = s.ReadLastViewed(ctx, "a")
	assert.True(t, domain.IsNotFound(err))
	assert.Zero(t, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, s.WriteLastViewed(ctx, "old", viewed))
	clock.advance(45 * time.Second)
	require.NoError(t, s.WriteLastViewed(ctx, "new", viewed))
	clock.advance(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_RunJanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.RunJanitor(ctx, time.Millisecond) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
