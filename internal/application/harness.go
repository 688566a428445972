package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultGrace = 10 * time.Second

type HarnessOptions struct {
	Level    string
	Strategy string
	Budget   time.Duration
	Grace    time.Duration
}

type RunResult struct {
	RunID      string
	Outcome    domain.Outcome
	Elapsed    time.Duration
	Relations  domain.RelationSet
	ReportPath string
	Err        error
}

func (r RunResult) ExitCode() int {
	return r.Outcome.ExitCode()
}

// Harness supervises a single worker against a freshly launched simulator.
type Harness struct {
	opts    HarnessOptions
	sim     ports.Simulator
	reports ports.ReportStore
	history ports.RunHistory
	clock   ports.Clock
	logger  *zap.Logger
}

// NewHarness wires a supervisor. history may be nil.
func NewHarness(opts HarnessOptions, sim ports.Simulator, reports ports.ReportStore, history ports.RunHistory, clock ports.Clock, logger *zap.Logger) (*Harness, error) {
	if sim == nil || reports == nil {
		return nil, errors.New("harness requires a simulator and a report store")
	}
	if opts.Level == "" {
		return nil, errors.New("harness requires a level name")
	}
	if opts.Budget <= 0 {
		return nil, fmt.Errorf("time budget must be positive, got %s", opts.Budget)
	}
	if opts.Grace < 0 {
		return nil, fmt.Errorf("grace period must not be negative, got %s", opts.Grace)
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Harness{
		opts:    opts,
		sim:     sim,
		reports: reports,
		history: history,
		clock:   clock,
		logger:  logger.With(zap.String("component", "harness"), zap.String("level_name", opts.Level)),
	}, nil
}

// Run launches the simulator, starts a worker and waits for it within the
// time budget, escalating to cancellation and then termination. Cleanup and
// reporting happen regardless of how the worker ended. The returned error is
// only set when the run could not be started.
func (h *Harness) Run(ctx context.Context, starter WorkerStarter) (RunResult, error) {
	startedAt := h.clock.Now()
	result := RunResult{RunID: newRunID(startedAt), Outcome: domain.OutcomeFailed}
	logger := h.logger.With(zap.String("run_id", result.RunID))
	detached := context.WithoutCancel(ctx)

	var (
		worker  Worker
		once    sync.Once
		cleanup = func() {
			once.Do(func() { h.cleanup(detached, logger, worker) })
		}
	)
	defer cleanup()

	if err := h.launch(ctx, starter, &worker); err != nil {
		logger.Error("run could not be started", zap.Error(err))
		result.Err = err
		cleanup()
		h.record(detached, logger, startedAt, result)
		return result, err
	}

	workerStarted := h.clock.Now()
	logger.Info("worker started", zap.Duration("budget", h.opts.Budget), zap.Duration("grace", h.opts.Grace))

	outcome, res := h.supervise(ctx, logger, worker)
	result.Outcome = outcome
	result.Elapsed = h.clock.Now().Sub(workerStarted)
	result.Err = res.Err
	if outcome != domain.OutcomeTerminated {
		result.Relations = res.Relations
	}

	cleanup()

	path, err := h.reports.Write(detached, h.opts.Level, result.Elapsed, result.Relations)
	if err != nil {
		logger.Error("failed to write report", zap.Error(err))
		if result.Outcome == domain.OutcomeCompleted {
			result.Outcome = domain.OutcomeFailed
		}
		result.Err = errors.Join(result.Err, fmt.Errorf("write report: %w", err))
	}
	result.ReportPath = path

	logger.Info("run finished",
		zap.String("outcome", string(result.Outcome)),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("relations", result.Relations.Len()),
		zap.String("report", path),
	)
	h.record(detached, logger, startedAt, result)
	return result, nil
}

func (h *Harness) launch(ctx context.Context, starter WorkerStarter, worker *Worker) error {
	if err := h.sim.Start(ctx); err != nil {
		return fmt.Errorf("start simulator: %w", err)
	}
	if err := h.sim.WaitReady(ctx); err != nil {
		return fmt.Errorf("wait for simulator: %w", err)
	}

	w, err := starter.StartWorker(ctx)
	if err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	*worker = w
	return nil
}

func (h *Harness) supervise(ctx context.Context, logger *zap.Logger, worker Worker) (domain.Outcome, WorkerResult) {
	budget := time.NewTimer(h.opts.Budget)
	defer budget.Stop()

	select {
	case <-worker.Done():
		res := worker.Result()
		if res.Err != nil {
			logger.Error("worker failed", zap.Error(res.Err))
			return domain.OutcomeFailed, res
		}
		return domain.OutcomeCompleted, res
	case <-budget.C:
		logger.Warn("time budget elapsed, cancelling worker")
	case <-ctx.Done():
		logger.Warn("run interrupted, cancelling worker", zap.Error(ctx.Err()))
	}

	worker.Cancel()
	grace := time.NewTimer(h.opts.Grace)
	defer grace.Stop()

	select {
	case <-worker.Done():
		res := worker.Result()
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			logger.Error("worker failed after cancellation", zap.Error(res.Err))
			return domain.OutcomeFailed, res
		}
		res.Err = nil
		logger.Info("worker stopped within grace period", zap.Int("relations", res.Relations.Len()))
		return domain.OutcomeCancelled, res
	case <-grace.C:
	}

	logger.Warn("grace period exceeded, terminating worker")
	worker.Terminate()
	return domain.OutcomeTerminated, WorkerResult{Err: errors.New("worker terminated after grace period")}
}

// cleanup closes the worker session before the simulator. Failures are
// logged and never stop the next release.
func (h *Harness) cleanup(ctx context.Context, logger *zap.Logger, worker Worker) {
	if worker != nil {
		if err := worker.Close(ctx); err != nil {
			logger.Warn("worker cleanup failed", zap.Error(err))
		}
	}
	if err := h.sim.Close(); err != nil {
		logger.Warn("simulator cleanup failed", zap.Error(err))
	}
}

func (h *Harness) record(ctx context.Context, logger *zap.Logger, startedAt time.Time, result RunResult) {
	if h.history == nil {
		return
	}

	run := domain.RunRecord{
		ID:         result.RunID,
		Level:      h.opts.Level,
		Strategy:   h.opts.Strategy,
		Outcome:    result.Outcome,
		ExitCode:   result.ExitCode(),
		Elapsed:    result.Elapsed,
		Relations:  result.Relations.Len(),
		ReportPath: result.ReportPath,
		StartedAt:  startedAt,
	}
	if result.Err != nil {
		run.Error = result.Err.Error()
	}
	if err := h.history.Record(ctx, run); err != nil {
		logger.Warn("failed to record run history", zap.Error(err))
	}
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("run-%s-%s", now.UTC().Format("20060102T150405"), uuid.NewString()[:8])
}
