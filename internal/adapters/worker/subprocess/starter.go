// Package subprocess runs a worker in a child process so it can be killed
// outright when it overruns its grace period.
package subprocess

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/bnema/labrecruits-gym/internal/application"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

var osExecutable = os.Executable

const maxReportLine = 4 << 20

// DefaultExitTimeout is how long a worker that has reported may spend closing
// its session before it is killed.
const DefaultExitTimeout = 10 * time.Second

// Starter launches Executable (the current binary by default) with Args. The
// child prints application.WorkerReport lines on stdout.
type Starter struct {
	Executable string
	Args       []string
	Env        []string
	// Stderr receives the child's stderr. Defaults to the logger.
	Stderr      io.Writer
	ExitTimeout time.Duration
	Logger      *zap.Logger
}

var _ application.WorkerStarter = Starter{}

func (s Starter) StartWorker(ctx context.Context) (application.Worker, error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "worker"))

	exe := s.Executable
	if exe == "" {
		self, err := osExecutable()
		if err != nil {
			return nil, fmt.Errorf("resolve worker executable: %w", err)
		}
		exe = self
	}

	cmd := exec.Command(exe, s.Args...)
	cmd.Env = append(os.Environ(), s.Env...)

	var logWriter *zapio.Writer
	if s.Stderr != nil {
		cmd.Stderr = s.Stderr
	} else {
		logWriter = &zapio.Writer{Log: logger.Named("stderr"), Level: zapcore.InfoLevel}
		cmd.Stderr = logWriter
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("attach worker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch worker: %w", err)
	}
	logger.Debug("worker process launched", zap.Int("pid", cmd.Process.Pid))

	exitTimeout := s.ExitTimeout
	if exitTimeout <= 0 {
		exitTimeout = DefaultExitTimeout
	}

	w := &worker{
		cmd:         cmd,
		done:        make(chan struct{}),
		ready:       make(chan struct{}),
		exited:      make(chan struct{}),
		exitTimeout: exitTimeout,
		logger:      logger,
	}
	go w.supervise(stdout, logWriter)

	select {
	case <-w.ready:
		return w, nil
	case <-w.done:
		w.Terminate()
		<-w.exited
		return nil, fmt.Errorf("worker exited during startup: %w", w.Result().Err)
	case <-ctx.Done():
		w.Terminate()
		<-w.exited
		return nil, ctx.Err()
	}
}

// worker is done as soon as the child reports its result; the child may
// still be closing its session until exited is closed.
type worker struct {
	cmd         *exec.Cmd
	done        chan struct{}
	ready       chan struct{}
	exited      chan struct{}
	exitTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	result   application.WorkerResult
	doneOnce sync.Once
}

func (w *worker) supervise(stdout io.Reader, logWriter *zapio.Writer) {
	var readyOnce sync.Once

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReportLine)
	for scanner.Scan() {
		var msg application.WorkerReport
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil || msg.Phase == "" {
			w.logger.Debug("worker output", zap.ByteString("line", scanner.Bytes()))
			continue
		}
		switch msg.Phase {
		case application.WorkerPhaseReady:
			readyOnce.Do(func() { close(w.ready) })
		case application.WorkerPhaseDone:
			w.finish(msg.Result())
		}
	}
	if err := scanner.Err(); err != nil {
		w.logger.Warn("reading worker output failed", zap.Error(err))
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := w.cmd.Wait()
	if logWriter != nil {
		_ = logWriter.Close()
	}

	var result application.WorkerResult
	if waitErr != nil {
		result.Err = fmt.Errorf("worker exited without a report: %w", waitErr)
	} else {
		result.Err = errors.New("worker exited without a report")
	}
	w.finish(result)
	close(w.exited)
}

// finish records the first result only.
func (w *worker) finish(result application.WorkerResult) {
	w.doneOnce.Do(func() {
		w.mu.Lock()
		w.result = result
		w.mu.Unlock()
		close(w.done)
	})
}

func (w *worker) Done() <-chan struct{} {
	return w.done
}

func (w *worker) Result() application.WorkerResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Cancel interrupts the child. Platforms without interrupts kill it instead.
func (w *worker) Cancel() {
	if err := w.cmd.Process.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
		w.logger.Warn("interrupt not delivered, killing worker", zap.Error(err))
		w.Terminate()
	}
}

func (w *worker) Terminate() {
	if err := w.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		w.logger.Warn("failed to kill worker", zap.Error(err))
	}
}

// Close makes sure the child is gone. A child that has reported gets the exit
// timeout to close its session; one that has not is killed straight away.
// The OS releases the socket of a killed child.
func (w *worker) Close(ctx context.Context) error {
	select {
	case <-w.exited:
		return nil
	default:
	}

	select {
	case <-w.done:
		timer := time.NewTimer(w.exitTimeout)
		defer timer.Stop()
		select {
		case <-w.exited:
			return nil
		case <-timer.C:
			w.logger.Warn("worker did not exit after reporting, killing it", zap.Duration("timeout", w.exitTimeout))
		case <-ctx.Done():
		}
	default:
	}

	w.Terminate()
	select {
	case <-w.exited:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for worker exit: %w", ctx.Err())
	}
}
