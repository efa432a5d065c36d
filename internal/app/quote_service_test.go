package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingTrigger counts sync requests by reason.
type recordingTrigger struct {
	reasons []string
}

func (r *recordingTrigger) Trigger(reason string) bool {
	r.reasons = append(r.reasons, reason)
	return true
}

type serviceFixture struct {
	svc      *QuoteService
	store    *domain.QuoteStore
	repo     *mocks.MockQuoteRepository
	sessions *mocks.MockSessionStore
	trigger  *recordingTrigger
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()

	f := serviceFixture{
		store:    domain.NewQuoteStore(),
		repo:     mocks.NewMockQuoteRepository(t),
		sessions: mocks.NewMockSessionStore(t),
		trigger:  &recordingTrigger{},
	}
	f.svc = NewQuoteService(QuoteServiceConfig{
		Store:      f.store,
		Repository: f.repo,
		Sessions:   f.sessions,
		Sync:       f.trigger,
		Logger:     discardLogger(),
	})

	return f
}

func TestNewQuoteService_PanicsWithoutDependencies(t *testing.T) {
	store := domain.NewQuoteStore()
	repo := mocks.NewMockQuoteRepository(t)
	sessions := mocks.NewMockSessionStore(t)

	assert.Panics(t, func() { NewQuoteService(QuoteServiceConfig{Repository: repo, Sessions: sessions}) })
	assert.Panics(t, func() { NewQuoteService(QuoteServiceConfig{Store: store, Sessions: sessions}) })
	assert.Panics(t, func() { NewQuoteService(QuoteServiceConfig{Store: store, Repository: repo}) })
	assert.NotPanics(t, func() {
		NewQuoteService(QuoteServiceConfig{Store: store, Repository: repo, Sessions: sessions})
	})
}

func TestQuoteService_Restore(t *testing.T) {
	persisted := []domain.Quote{{Text: "A", Category: "X"}}

	tests := []struct {
		name         string
		quotes       []domain.Quote
		ok           bool
		readErr      error
		category     string
		categoryOK   bool
		wantQuotes   []domain.Quote
		wantSelected string
	}{
		{
			name:         "restores both",
			quotes:       persisted,
			ok:           true,
			category:     "X",
			categoryOK:   true,
			wantQuotes:   persisted,
			wantSelected: "X",
		},
		{
			name:       "absent keeps defaults",
			wantQuotes: domain.DefaultQuotes(),
		},
		{
			name:       "malformed keeps defaults",
			readErr:    domain.NewPersistenceError("read", "quotes", errors.New("bad json")),
			wantQuotes: domain.DefaultQuotes(),
		},
		{
			name:       "empty list keeps defaults",
			quotes:     []domain.Quote{},
			ok:         true,
			wantQuotes: domain.DefaultQuotes(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			ctx := context.Background()

			f.repo.EXPECT().ReadQuotes(ctx).Return(tt.quotes, tt.ok, tt.readErr)
			f.repo.EXPECT().ReadSelectedCategory(ctx).Return(tt.category, tt.categoryOK, nil)

			f.svc.Restore(ctx)

			assert.Equal(t, tt.wantQuotes, f.store.Snapshot())
			assert.Equal(t, tt.wantSelected, f.svc.SelectedCategory())
		})
	}
}

func TestQuoteService_Add(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteQuotes(ctx, mock.MatchedBy(func(qs []domain.Quote) bool {
		return len(qs) == 4 && qs[3] == domain.Quote{Text: "a", Category: "b"}
	})).Return(nil)

	quote, err := f.svc.Add(ctx, " a ", "b")
	require.NoError(t, err)
	assert.Equal(t, domain.Quote{Text: "a", Category: "b"}, quote)
	assert.Equal(t, []string{ReasonAdd}, f.trigger.reasons)
}

func TestQuoteService_Add_Invalid(t *testing.T) {
	for _, in := range [][2]string{{"", "x"}, {"x", ""}, {"", ""}} {
		f := newServiceFixture(t)

		_, err := f.svc.Add(context.Background(), in[0], in[1])
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, domain.DefaultQuotes(), f.store.Snapshot())
		assert.Empty(t, f.trigger.reasons)
	}
}

func TestQuoteService_Add_PersistenceFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteQuotes(ctx, mock.Anything).
		Return(domain.NewPersistenceError("write", "quotes", errors.New("readonly")))

	_, err := f.svc.Add(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 4, f.store.Len())
}

func TestQuoteService_AddThenRandomInCategory(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteQuotes(ctx, mock.Anything).Return(nil)
	f.sessions.EXPECT().WriteLastViewed(ctx, "s1", mock.Anything).Return(nil)

	_, err := f.svc.Add(ctx, "Q", "Motivation")
	require.NoError(t, err)

	for range 20 {
		pick, err := f.svc.Random(ctx, RandomQuery{SessionID: "s1", Category: "Motivation", OverrideCategory: true})
		require.NoError(t, err)
		assert.Equal(t, "Motivation", pick.Quote.Category)
	}
}

func TestQuoteService_Random_UsesSelectedCategory(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteSelectedCategory(ctx, "Life").Return(nil)
	f.sessions.EXPECT().WriteLastViewed(ctx, "s1", domain.LastViewed{
		Index: 0,
		Quote: domain.DefaultQuotes()[1],
	}).Return(nil)

	assert.Equal(t, "Life", f.svc.SelectCategory(ctx, " Life "))

	pick, err := f.svc.Random(ctx, RandomQuery{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultQuotes()[1], pick.Quote)
	assert.Zero(t, pick.Index)
}

func TestQuoteService_Random_Empty(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Random(context.Background(), RandomQuery{Category: "Nope", OverrideCategory: true})
	require.Error(t, err)
	assert.True(t, domain.IsEmptyResult(err))
}

func TestQuoteService_Random_SessionWriteFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.sessions.EXPECT().WriteLastViewed(ctx, "s1", mock.Anything).
		Return(domain.NewPersistenceError("write", "lastViewed", errors.New("gone")))

	_, err := f.svc.Random(ctx, RandomQuery{SessionID: "s1"})
	assert.NoError(t, err)
}

// rawItems wraps JSON literals as import candidates.
func rawItems(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		out[i] = json.RawMessage(item)
	}
	return out
}

func TestQuoteService_Import(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteQuotes(ctx, mock.MatchedBy(func(qs []domain.Quote) bool {
		return len(qs) == 5
	})).Return(nil)

	n, err := f.svc.Import(ctx, rawItems(`{"text":"a","category":"b"}`, `{"bad":1}`, `{"text":"c","category":"d"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 5, f.store.Len())
	assert.Equal(t, []string{ReasonImport}, f.trigger.reasons)
}

func TestQuoteService_Import_Rejected(t *testing.T) {
	for _, items := range [][]json.RawMessage{
		rawItems(`{"bad":1}`),
		rawItems(`5`, `"text"`, `null`),
		nil,
	} {
		f := newServiceFixture(t)

		_, err := f.svc.Import(context.Background(), items)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, 3, f.store.Len())
		assert.Empty(t, f.trigger.reasons)
	}
}

func TestQuoteService_Export(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteQuotes(ctx, mock.Anything).Return(nil)
	_, err := f.svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	out := f.svc.Export(ctx)
	require.Len(t, out, 4)
	assert.Equal(t, "Motivation", out[0].Category)
	assert.Equal(t, domain.Quote{Text: "a", Category: "b"}, out[3])
}

func TestQuoteService_ConcurrentAddsPersistNewestSnapshot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	var calls atomic.Int32
	var mu sync.Mutex
	var durable []domain.Quote
	blocked, unblock := make(chan struct{}), make(chan struct{})

	f.repo.EXPECT().WriteQuotes(ctx, mock.Anything).RunAndReturn(func(_ context.Context, qs []domain.Quote) error {
		if calls.Add(1) == 1 {
			close(blocked)
			<-unblock
		}
		mu.Lock()
		durable = qs
		mu.Unlock()
		return nil
	}).Times(2)

	var wg sync.WaitGroup
	wg.Go(func() {
		_, err := f.svc.Add(ctx, "first", "X")
		assert.NoError(t, err)
	})
	<-blocked

	wg.Go(func() {
		_, err := f.svc.Add(ctx, "second", "X")
		assert.NoError(t, err)
	})
	require.Eventually(t, func() bool { return f.store.Len() == 5 }, time.Second, time.Millisecond)

	close(unblock)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, durable, 5)
	assert.Equal(t, "second", durable[4].Text)
}

func TestQuoteService_ListAndCategories(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	assert.Len(t, f.svc.List(ctx, ""), 3)
	assert.Equal(t, []domain.Quote{domain.DefaultQuotes()[2]}, f.svc.List(ctx, " Inspiration "))
	assert.Empty(t, f.svc.List(ctx, "Nope"))

	assert.Equal(t, Categories{
		Categories: []string{"Motivation", "Life", "Inspiration"},
	}, f.svc.Categories(ctx))
}

func TestQuoteService_SelectCategory_PersistenceFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.repo.EXPECT().WriteSelectedCategory(ctx, "Ghost").Return(errors.New("locked"))

	f.svc.SelectCategory(ctx, "Ghost")
	assert.Equal(t, "Ghost", f.svc.Categories(ctx).Selected)
}

func TestQuoteService_LastViewed(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	viewed := domain.LastViewed{Index: 1, Quote: domain.DefaultQuotes()[0]}

	f.sessions.EXPECT().ReadLastViewed(ctx, "s1").Return(viewed, nil)
	f.sessions.EXPECT().ReadLastViewed(ctx, "s2").Return(domain.LastViewed{}, domain.NewNotFoundError("lastViewed", "s2"))

	got, err := f.svc.LastViewed(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, viewed, got)

	_, err = f.svc.LastViewed(ctx, "s2")
	assert.True(t, domain.IsNotFound(err))
}
