package clients

import (
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/platform/config"
)

// State is the breaker's view of the remote.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cooldown has elapsed.
	StateOpen

	// StateHalfOpen lets a bounded number of probe calls through.
	StateHalfOpen
)

// String returns the label used in logs, metrics and health details.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Transition describes one state change of a Breaker.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// BreakerSnapshot is a point-in-time copy of a Breaker's counters.
type BreakerSnapshot struct {
	State    State
	Failures int

	// RetryAt is when an open breaker admits its first probe. Zero unless open.
	RetryAt time.Time
}

// Breaker stops a sync cycle from hammering a remote that keeps failing.
//
// Closed opens after MaxFailures consecutive failures. Open admits a probe
// once Timeout has passed since it opened. HalfOpen closes after
// HalfOpenLimit probe successes and reopens on the first probe failure.
type Breaker struct {
	mu        sync.Mutex
	cfg       config.CircuitBreakerConfig
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
	observers []func(Transition)
	now       func() time.Time
}

// NewBreaker creates a closed breaker. Zero thresholds are raised to one.
func NewBreaker(cfg config.CircuitBreakerConfig) *Breaker {
	cfg.MaxFailures = max(cfg.MaxFailures, 1)
	cfg.HalfOpenLimit = max(cfg.HalfOpenLimit, 1)

	return &Breaker{cfg: cfg, now: time.Now}
}

// Observe registers fn to run after every transition.
// Observers run on the caller's goroutine once the breaker lock is released.
func (b *Breaker) Observe(fn func(Transition)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.observers = append(b.observers, fn)
}

// Allow reports whether a call may proceed. An open breaker whose cooldown
// has elapsed moves to half-open and admits the caller as the first probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()

	var changed *Transition
	allowed := false

	switch b.state {
	case StateClosed:
		allowed = true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.cfg.Timeout {
			changed = b.moveTo(StateHalfOpen)
			b.inFlight = 1
			allowed = true
		}
	case StateHalfOpen:
		if b.inFlight < b.cfg.HalfOpenLimit {
			b.inFlight++
			allowed = true
		}
	}

	b.mu.Unlock()
	b.notify(changed)

	return allowed
}

// Success records a completed call.
func (b *Breaker) Success() {
	b.mu.Lock()

	var changed *Transition

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.inFlight--
		b.successes++
		if b.successes >= b.cfg.HalfOpenLimit {
			changed = b.moveTo(StateClosed)
		}
	}

	b.mu.Unlock()
	b.notify(changed)
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	b.mu.Lock()

	var changed *Transition

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			changed = b.moveTo(StateOpen)
		}
	case StateHalfOpen:
		b.inFlight--
		changed = b.moveTo(StateOpen)
	}

	b.mu.Unlock()
	b.notify(changed)
}

// Snapshot returns the current state and counters.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := BreakerSnapshot{State: b.state, Failures: b.failures}
	if b.state == StateOpen {
		snap.RetryAt = b.openedAt.Add(b.cfg.Timeout)
	}

	return snap
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(to State) *Transition {
	if b.state == to {
		return nil
	}

	t := &Transition{From: b.state, To: to, At: b.now()}
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == StateOpen {
		b.openedAt = t.At
		b.inFlight = 0
	}

	return t
}

func (b *Breaker) notify(t *Transition) {
	if t == nil {
		return
	}

	b.mu.Lock()
	observers := slices.Clone(b.observers)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(*t)
	}
}
