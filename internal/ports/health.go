package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned by Register when the name is taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker reports the health of one dependency. The SQLite repository
// pings its database; the remote quote source reports its circuit breaker.
type HealthChecker interface {
	// Name identifies the dependency in readiness output.
	Name() string

	// Check returns nil when the dependency is usable.
	Check(ctx context.Context) error
}

// OptionalChecker is implemented by health checkers whose failure degrades
// the service without making it unready. The remote quote source is one:
// quotes keep being served from the local store while it is down.
type OptionalChecker interface {
	HealthChecker

	// Optional reports whether a failure should only degrade overall status.
	Optional() bool
}

// HealthRegistry aggregates the checks registered at startup.
type HealthRegistry interface {
	Register(checker HealthChecker) error

	// CheckAll runs every check concurrently under ctx.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is healthy, degraded or unhealthy, in increasing severity.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}

// HealthResult is the outcome of one CheckAll. Status is the most severe
// status among Checks.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of a single checker.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Optional bool          `json:"optional,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is safe for concurrent Register and CheckAll.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry returns an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{checkers: []HealthChecker{}}
}

// Register adds checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	if slices.ContainsFunc(r.checkers, func(c HealthChecker) bool { return c.Name() == name }) {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs the registered checks concurrently. A failing optional
// checker degrades the result; any other failure makes it unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Go(func() { results[i] = runCheck(ctx, c) })
	}
	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}
	for i, c := range checkers {
		res := results[i]
		out.Checks[c.Name()] = res
		if res.Status.severity() > out.Status.severity() {
			out.Status = res.Status
		}
	}

	return out
}

func runCheck(ctx context.Context, c HealthChecker) *CheckResult {
	oc, ok := c.(OptionalChecker)
	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: ok && oc.Optional(),
	}

	start := time.Now()
	err := c.Check(ctx)
	res.Duration = time.Since(start)

	if err != nil {
		res.Message = err.Error()
		res.Status = HealthStatusUnhealthy
		if res.Optional {
			res.Status = HealthStatusDegraded
		}
	}

	return res
}
