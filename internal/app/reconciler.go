package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/ports"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
)

// Notification texts shown after a cycle.
const (
	MessageSyncSucceeded = "Synced with server (server data prioritized)"
	MessageSyncFailed    = "Sync failed"
)

// Trigger reasons.
const (
	ReasonStartup  = "startup"
	ReasonInterval = "interval"
	ReasonAdd      = "add"
	ReasonImport   = "import"
	ReasonManual   = "manual"
)

// Defaults applied when the config leaves a field zero.
const (
	defaultSyncInterval = 30 * time.Second
	defaultCycleTimeout = 10 * time.Second
)

// errNoServerData reports a fetch that produced nothing usable.
var errNoServerData = errors.New("no server data fetched")

// SyncState is the reconciler's position in its cycle.
type SyncState string

const (
	SyncStateIdle     SyncState = "idle"
	SyncStateFetching SyncState = "fetching"
)

// SyncRecorder receives cycle measurements. *telemetry.SyncMetrics implements it.
type SyncRecorder interface {
	CycleCompleted(result string, seconds float64)
	TriggerDropped()
	StoreSize(n int)
}

// Outcome describes one finished cycle.
type Outcome struct {
	Reason     string    `json:"reason"`
	Result     string    `json:"result"`
	Message    string    `json:"message"`
	Fetched    int       `json:"fetched"`
	StoreSize  int       `json:"storeSize"`
	Pushed     bool      `json:"pushed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Succeeded reports whether the merge was applied.
func (o Outcome) Succeeded() bool {
	return o.Result == telemetry.SyncResultSuccess || o.Result == telemetry.SyncResultPushFailed
}

// SyncStatus is a point-in-time view of the reconciler.
type SyncStatus struct {
	State       SyncState `json:"state"`
	Pending     bool      `json:"pending"`
	Cycles      int       `json:"cycles"`
	Failures    int       `json:"failures"`
	Dropped     int       `json:"dropped"`
	LastOutcome *Outcome  `json:"lastOutcome,omitempty"`
}

// ReconcilerConfig contains the reconciler's dependencies.
type ReconcilerConfig struct {
	Store      *domain.QuoteStore
	Remote     ports.RemoteQuoteSource
	Repository ports.QuoteRepository
	Notifier   ports.Notifier

	// Flags gates the push stage. Nil means push is enabled.
	Flags ports.FeatureFlags

	// Metrics is optional.
	Metrics SyncRecorder

	// Interval between scheduled cycles. Defaults to 30s.
	Interval time.Duration

	// CycleTimeout bounds one cycle. Defaults to 10s.
	CycleTimeout time.Duration

	Logger *slog.Logger
}

// Reconciler keeps the store in step with the remote source.
//
// At most one cycle runs at a time. Triggers arriving while a cycle runs are
// coalesced into a single pending cycle; any further trigger is dropped.
type Reconciler struct {
	store      *domain.QuoteStore
	remote     ports.RemoteQuoteSource
	repository ports.QuoteRepository
	notifier   ports.Notifier
	flags      ports.FeatureFlags
	metrics    SyncRecorder
	exec       *Executor
	logger     *slog.Logger

	interval     time.Duration
	cycleTimeout time.Duration

	// pending is the single-slot queue of trigger reasons.
	pending chan string

	// cycle serializes cycles between Run and SyncNow.
	cycle sync.Mutex

	mu       sync.Mutex
	state    SyncState
	cycles   int
	failures int
	dropped  int
	last     *Outcome

	// now returns the current time. Overridable for testing.
	now func() time.Time
}

// NewReconciler creates a reconciler.
// Panics if Store, Remote, Repository or Notifier is nil.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	switch {
	case cfg.Store == nil:
		panic("Reconciler: Store is required")
	case cfg.Remote == nil:
		panic("Reconciler: Remote is required")
	case cfg.Repository == nil:
		panic("Reconciler: Repository is required")
	case cfg.Notifier == nil:
		panic("Reconciler: Notifier is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "reconciler"))

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = (*telemetry.SyncMetrics)(nil)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	timeout := cfg.CycleTimeout
	if timeout <= 0 {
		timeout = defaultCycleTimeout
	}

	return &Reconciler{
		store:        cfg.Store,
		remote:       cfg.Remote,
		repository:   cfg.Repository,
		notifier:     cfg.Notifier,
		flags:        cfg.Flags,
		metrics:      metrics,
		exec:         NewExecutor(logger),
		logger:       logger,
		interval:     interval,
		cycleTimeout: timeout,
		pending:      make(chan string, 1),
		state:        SyncStateIdle,
		now:          time.Now,
	}
}

// Run fires an initial cycle, then one every interval, and drains triggers
// until ctx is done. It never returns early on a failed cycle.
func (r *Reconciler) Run(ctx context.Context) error {
	r.Trigger(ReasonStartup)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "reconciler started", slog.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "reconciler stopped")
			return nil
		case <-ticker.C:
			r.Trigger(ReasonInterval)
		case reason := <-r.pending:
			r.cycle.Lock()
			r.runCycle(ctx, reason)
			r.cycle.Unlock()
		}
	}
}

// Trigger requests a cycle. It returns false when the request was dropped
// because a cycle is already pending.
func (r *Reconciler) Trigger(reason string) bool {
	select {
	case r.pending <- reason:
		r.logger.Debug("sync triggered", slog.String("reason", reason))
		return true
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()

		r.metrics.TriggerDropped()
		r.logger.Debug("sync trigger dropped", slog.String("reason", reason))

		return false
	}
}

// SyncNow runs one cycle inline. It returns a ConflictError when a cycle is
// already running. A failed cycle is reported in the outcome, not as an error.
func (r *Reconciler) SyncNow(ctx context.Context) (Outcome, error) {
	if !r.cycle.TryLock() {
		return Outcome{}, domain.NewConflictError("sync", "sync in progress")
	}
	defer r.cycle.Unlock()

	return r.runCycle(ctx, ReasonManual), nil
}

// Status returns the current state and counters.
func (r *Reconciler) Status() SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := SyncStatus{
		State:    r.state,
		Pending:  len(r.pending) > 0,
		Cycles:   r.cycles,
		Failures: r.failures,
		Dropped:  r.dropped,
	}
	if r.last != nil {
		last := *r.last
		status.LastOutcome = &last
	}

	return status
}

// runCycle executes one reconciliation. The caller holds r.cycle.
func (r *Reconciler) runCycle(ctx context.Context, reason string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, r.cycleTimeout)
	defer cancel()

	r.setState(SyncStateFetching)
	defer r.setState(SyncStateIdle)

	outcome := Outcome{Reason: reason, StartedAt: r.now()}
	logger := r.logger.With(slog.String("reason", reason))

	res, err := Execute(ctx, r.exec, Pipeline[[]domain.Quote, []domain.Quote]{
		Name:  "sync",
		Fetch: r.remote.FetchQuotes,
		Verify: func(_ context.Context, fetched []domain.Quote) error {
			if len(fetched) == 0 {
				return errNoServerData
			}
			return nil
		},
		Merge: func(_ context.Context, fetched []domain.Quote) ([]domain.Quote, error) {
			r.store.MergeFromRemote(fetched)
			return r.store.Snapshot(), nil
		},
		Persist: r.persist,
		Push:    r.pushStage(ctx),
	})

	outcome.FinishedAt = r.now()
	outcome.Fetched = len(res.Fetched)
	outcome.StoreSize = r.store.Len()
	outcome.Pushed = res.Pushed

	switch stage, _ := FailedStage(err); {
	case err == nil && res.PushErr != nil:
		outcome.Result = telemetry.SyncResultPushFailed
		outcome.Message = MessageSyncSucceeded
		outcome.Error = res.PushErr.Error()
	case err == nil:
		outcome.Result = telemetry.SyncResultSuccess
		outcome.Message = MessageSyncSucceeded
	case stage == StageVerify:
		outcome.Result = telemetry.SyncResultEmpty
		outcome.Message = MessageSyncFailed + ": " + errNoServerData.Error()
		outcome.Error = err.Error()
	default:
		outcome.Result = telemetry.SyncResultFetchFailed
		outcome.Message = MessageSyncFailed
		outcome.Error = err.Error()
	}

	r.record(outcome)

	level := ports.NotificationSuccess
	if !outcome.Succeeded() {
		level = ports.NotificationError
	}
	r.notifier.Notify(ctx, ports.Notification{
		Message:   outcome.Message,
		Level:     level,
		CreatedAt: outcome.FinishedAt,
	})

	logger.InfoContext(ctx, "sync cycle finished",
		slog.String("result", outcome.Result),
		slog.Int("fetched", outcome.Fetched),
		slog.Int("store_size", outcome.StoreSize),
		slog.Bool("pushed", outcome.Pushed),
	)

	return outcome
}

// persist writes the store's current contents rather than the merged
// snapshot, so a request that landed after the merge is not lost.
func (r *Reconciler) persist(ctx context.Context, _ []domain.Quote) error {
	return r.store.WriteThrough(func(quotes []domain.Quote) error {
		return r.repository.WriteQuotes(ctx, quotes)
	})
}

// pushStage returns the push stage, or nil when the flag disables it.
func (r *Reconciler) pushStage(ctx context.Context) func(context.Context, []domain.Quote) error {
	if r.flags != nil && !r.flags.IsEnabled(ctx, ports.FlagSyncPush, true) {
		return nil
	}

	return r.remote.PushQuotes
}

func (r *Reconciler) record(o Outcome) {
	r.mu.Lock()
	r.cycles++
	if !o.Succeeded() {
		r.failures++
	}
	r.last = &o
	r.mu.Unlock()

	r.metrics.CycleCompleted(o.Result, o.FinishedAt.Sub(o.StartedAt).Seconds())
	r.metrics.StoreSize(o.StoreSize)
}

func (r *Reconciler) setState(s SyncState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}
