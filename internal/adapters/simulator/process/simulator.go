// Package process launches the Lab Recruits game as a child process.
package process

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const (
	DefaultReadyTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	defaultPollInterval    = 100 * time.Millisecond
)

var executableByOS = map[string]string{
	"linux":   filepath.Join("gym", "Linux", "bin", "LabRecruits.x86_64"),
	"windows": filepath.Join("gym", "Windows", "bin", "LabRecruits.exe"),
	"darwin":  filepath.Join("gym", "Mac", "bin", "LabRecruits.app", "Contents", "MacOS", "LabRecruits"),
}

// ExecutablePath resolves the game binary below root for the given OS.
func ExecutablePath(root, goos string) (string, error) {
	rel, ok := executableByOS[goos]
	if !ok {
		return "", fmt.Errorf("%w: unsupported platform %s", domain.ErrExecutableNotFound, goos)
	}

	root, err := homedir.Expand(root)
	if err != nil {
		return "", fmt.Errorf("expand executable root: %w", err)
	}
	path, err := filepath.Abs(filepath.Join(root, rel))
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrExecutableNotFound, path)
	}
	return path, nil
}

type Options struct {
	// Root is the directory holding the gym/ tree.
	Root string
	// Graphics is ignored on Linux, where the game always runs headless.
	Graphics        bool
	Addr            string
	ReadyTimeout    time.Duration
	ShutdownTimeout time.Duration
	PollInterval    time.Duration
	Logger          *zap.Logger
}

type Simulator struct {
	opts   Options
	goos   string
	logger *zap.Logger

	mu        sync.Mutex
	cmd       *exec.Cmd
	exited    chan struct{}
	waitErr   error
	closeOnce sync.Once
	closeErr  error
}

var _ ports.Simulator = (*Simulator)(nil)

func New(opts Options) *Simulator {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Simulator{
		opts:   opts,
		goos:   runtime.GOOS,
		logger: logger.With(zap.String("component", "simulator")),
	}
}

// Args lists the command-line flags the game is started with.
func (s *Simulator) Args() []string {
	if s.opts.Graphics && s.goos != "linux" {
		return nil
	}
	return []string{"-batchmode", "-nographics"}
}

func (s *Simulator) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := ExecutablePath(s.opts.Root, s.goos)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil {
		return errors.New("simulator already started")
	}

	stderr := &zapio.Writer{Log: s.logger.Named("stderr"), Level: zapcore.WarnLevel}
	cmd := exec.Command(path, s.Args()...)
	cmd.Dir = filepath.Dir(path)
	cmd.Stderr = stderr
	cmd.WaitDelay = s.opts.ShutdownTimeout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", filepath.Base(path), err)
	}

	s.cmd = cmd
	s.exited = make(chan struct{})
	go func() {
		err := cmd.Wait()
		_ = stderr.Close()
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(s.exited)
	}()

	s.logger.Info("simulator launched", zap.String("path", path), zap.Int("pid", cmd.Process.Pid), zap.Strings("args", s.Args()))
	return nil
}

// WaitReady polls the game's port until it accepts a connection.
func (s *Simulator) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	exited := s.exited
	s.mu.Unlock()
	if exited == nil {
		return errors.New("simulator not started")
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "tcp", s.opts.Addr)
		if err == nil {
			_ = conn.Close()
			s.logger.Info("simulator ready", zap.String("addr", s.opts.Addr))
			return nil
		}

		select {
		case <-exited:
			return fmt.Errorf("simulator exited before accepting connections: %w", s.exitErr())
		case <-ctx.Done():
			return fmt.Errorf("simulator not ready on %s: %w", s.opts.Addr, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close asks the game to stop, then kills it once the shutdown timeout has
// passed. It is safe to call more than once.
func (s *Simulator) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		cmd, exited := s.cmd, s.exited
		s.mu.Unlock()
		if cmd == nil {
			return
		}

		select {
		case <-exited:
			return
		default:
		}

		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			_ = cmd.Process.Kill()
		}

		select {
		case <-exited:
			s.logger.Info("simulator stopped")
			return
		case <-time.After(s.opts.ShutdownTimeout):
		}

		s.logger.Warn("simulator ignored termination, killing it", zap.Duration("timeout", s.opts.ShutdownTimeout))
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			s.closeErr = fmt.Errorf("kill simulator: %w", err)
			return
		}
		<-exited
	})
	return s.closeErr
}

func (s *Simulator) exitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.waitErr == nil {
		return errors.New("exit status 0")
	}
	return s.waitErr
}
