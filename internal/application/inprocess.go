package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"go.uber.org/zap"
)

// EnvironmentOpener yields a session with the world already loaded.
type EnvironmentOpener func(ctx context.Context) (*Environment, error)

// OpenEnvironment returns an opener that connects env and loads its world.
// The session is closed again when loading fails.
func OpenEnvironment(env *Environment) EnvironmentOpener {
	return func(ctx context.Context) (*Environment, error) {
		if err := env.Connect(ctx); err != nil {
			return nil, err
		}
		if err := env.LoadWorld(ctx); err != nil {
			_ = env.Close(ctx)
			return nil, err
		}
		return env, nil
	}
}

// InProcess runs the algorithm on a goroutine of the current process.
// Terminating it abandons the session so blocked exchanges fail; a goroutine
// that never returns is only reclaimed when the process exits.
type InProcess struct {
	Open      EnvironmentOpener
	Algorithm Algorithm
	Logger    *zap.Logger
}

func (s InProcess) StartWorker(ctx context.Context) (Worker, error) {
	if s.Open == nil || s.Algorithm == nil {
		return nil, errors.New("in-process worker requires an opener and an algorithm")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	env, err := s.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w := &inProcessWorker{
		env:    env,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger.With(zap.String("component", "worker")),
	}
	go w.run(runCtx, s.Algorithm)
	return w, nil
}

type inProcessWorker struct {
	env    *Environment
	cancel context.CancelFunc
	done   chan struct{}
	logger *zap.Logger

	mu     sync.Mutex
	result WorkerResult
}

func (w *inProcessWorker) run(ctx context.Context, algo Algorithm) {
	started := time.Now()
	var (
		relations domain.RelationSet
		err       error
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("algorithm panicked: %v", r)
			w.logger.Error("algorithm panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}

		w.mu.Lock()
		w.result = WorkerResult{Relations: relations, Elapsed: time.Since(started), Err: err}
		w.mu.Unlock()
		close(w.done)
	}()

	relations, err = algo(ctx, w.env)
}

func (w *inProcessWorker) Done() <-chan struct{} {
	return w.done
}

func (w *inProcessWorker) Result() WorkerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

func (w *inProcessWorker) Cancel() {
	w.cancel()
}

func (w *inProcessWorker) Terminate() {
	w.cancel()
	w.env.Abandon()
}

func (w *inProcessWorker) Close(ctx context.Context) error {
	w.cancel()
	return w.env.Close(ctx)
}
