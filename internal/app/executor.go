package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

// Reconciliation pipeline: Fetch → Verify → Merge → Persist → Push
//
// Nothing mutates local state until the remote payload has been fetched and
// verified. From Merge onwards the cycle is committed: a failed Persist is
// logged and a failed Push is reported, but neither rolls back the merge.
//
// The stages:
//   1. FETCH   - read the remote collection (already mapped by the ACL)
//   2. VERIFY  - reject payloads that must not touch the store
//   3. MERGE   - apply the payload to the store
//   4. PERSIST - write the merged state to durable storage (best-effort)
//   5. PUSH    - publish the merged state to the remote (best-effort)

// Stage identifies one step of a reconciliation cycle.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageVerify  Stage = "verify"
	StageMerge   Stage = "merge"
	StagePersist Stage = "persist"
	StagePush    Stage = "push"
)

// StageError wraps errors with the stage where they occurred.
type StageError struct {
	Stage   Stage
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

func newStageError(stage Stage, message string, cause error) error {
	return &StageError{Stage: stage, Message: message, Cause: cause}
}

// Executor runs pipelines, logging each stage.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Pipeline defines the stages of one cycle.
// R is the fetched payload and S the merged state it produces.
type Pipeline[R, S any] struct {
	// Name identifies this pipeline for logging.
	Name string

	// Fetch reads the payload. Required.
	Fetch func(ctx context.Context) (R, error)

	// Verify rejects a payload before any state changes.
	Verify func(ctx context.Context, fetched R) error

	// Merge applies the payload and returns the resulting state. Required.
	Merge func(ctx context.Context, fetched R) (S, error)

	// Persist stores the merged state. A failure is logged and recorded in
	// the result; the pipeline carries on.
	Persist func(ctx context.Context, merged S) error

	// Push publishes the merged state. Nil skips the stage.
	Push func(ctx context.Context, merged S) error
}

// Result describes a pipeline that got past Merge.
type Result[R, S any] struct {
	Fetched R
	Merged  S

	// PersistErr is the Persist failure, if any.
	PersistErr error

	// Pushed is true when Push ran and succeeded.
	Pushed bool

	// PushErr is the Push failure, if any.
	PushErr error
}

// Execute runs p through every stage. An error means the pipeline stopped
// before or during Merge and no state was changed by it.
func Execute[R, S any](ctx context.Context, exec *Executor, p Pipeline[R, S]) (Result[R, S], error) {
	var res Result[R, S]

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = exec.logger
	}

	logger = logger.With(slog.String("pipeline", p.Name))
	start := time.Now()

	if p.Fetch == nil || p.Merge == nil {
		return res, newStageError(StageFetch, "pipeline is missing a required stage", nil)
	}

	logger.DebugContext(ctx, "fetching")

	fetched, err := p.Fetch(ctx)
	if err != nil {
		logger.WarnContext(ctx, "fetch failed", slog.Any("error", err))

		return res, newStageError(StageFetch, "remote read failed", err)
	}
	res.Fetched = fetched

	if p.Verify != nil {
		if err := p.Verify(ctx, fetched); err != nil {
			logger.WarnContext(ctx, "verification failed", slog.Any("error", err))

			return res, newStageError(StageVerify, "payload rejected", err)
		}
	}

	merged, err := p.Merge(ctx, fetched)
	if err != nil {
		logger.ErrorContext(ctx, "merge failed", slog.Any("error", err))

		return res, newStageError(StageMerge, "merge failed", err)
	}
	res.Merged = merged

	if p.Persist != nil {
		if err := p.Persist(ctx, merged); err != nil {
			logger.ErrorContext(ctx, "persist failed", slog.Any("error", err))
			res.PersistErr = newStageError(StagePersist, "state not saved", err)
		}
	}

	if p.Push != nil {
		if err := p.Push(ctx, merged); err != nil {
			logger.WarnContext(ctx, "push failed", slog.Any("error", err))
			res.PushErr = newStageError(StagePush, "remote write failed", err)
		} else {
			res.Pushed = true
		}
	}

	logger.DebugContext(ctx, "pipeline completed",
		slog.Duration("duration", time.Since(start)),
		slog.Bool("pushed", res.Pushed),
	)

	return res, nil
}

// IsStageError checks if an error came out of a pipeline stage.
func IsStageError(err error) bool {
	var stageErr *StageError

	return errors.As(err, &stageErr)
}

// FailedStage extracts the stage from a pipeline error.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}
