package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/simtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeGame installs a shell script where the game binary is expected.
func fakeGame(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("fake game binary is a shell script")
	}

	root := t.TempDir()
	path := filepath.Join(root, executableByOS["linux"])
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return root
}

func TestExecutablePathPerPlatform(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for goos, rel := range executableByOS {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o755))

		got, err := ExecutablePath(root, goos)
		require.NoError(t, err, goos)
		assert.Equal(t, path, got)
	}

	_, err := ExecutablePath(root, "plan9")
	assert.ErrorIs(t, err, domain.ErrExecutableNotFound)

	_, err = ExecutablePath(t.TempDir(), "linux")
	assert.ErrorIs(t, err, domain.ErrExecutableNotFound)
}

func TestArgsDisableGraphicsOnLinux(t *testing.T) {
	t.Parallel()

	sim := New(Options{Graphics: true})
	sim.goos = "linux"
	assert.Equal(t, []string{"-batchmode", "-nographics"}, sim.Args())

	sim.goos = "windows"
	assert.Empty(t, sim.Args())

	sim = New(Options{Graphics: false})
	sim.goos = "darwin"
	assert.Equal(t, []string{"-batchmode", "-nographics"}, sim.Args())
}

func TestStartMissingExecutable(t *testing.T) {
	t.Parallel()

	sim := New(Options{Root: t.TempDir()})
	err := sim.Start(context.Background())
	require.ErrorIs(t, err, domain.ErrExecutableNotFound)
	assert.NoError(t, sim.Close())
}

func TestSimulatorLifecycle(t *testing.T) {
	t.Parallel()

	root := fakeGame(t, `echo "shader warmup" >&2; exec sleep 30`)
	srv := simtest.NewServer(t)
	core, logs := observer.New(zap.InfoLevel)

	sim := New(Options{
		Root:            root,
		Addr:            srv.Addr(),
		ReadyTimeout:    2 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		PollInterval:    10 * time.Millisecond,
		Logger:          zap.New(core),
	})

	require.NoError(t, sim.Start(context.Background()))
	assert.ErrorContains(t, sim.Start(context.Background()), "already started")
	require.NoError(t, sim.WaitReady(context.Background()))

	started := time.Now()
	require.NoError(t, sim.Close())
	assert.Less(t, time.Since(started), time.Second)
	require.NoError(t, sim.Close())

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("shader warmup").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWaitReadyFailsWhenGameExits(t *testing.T) {
	t.Parallel()

	root := fakeGame(t, `exit 3`)
	srv := simtest.NewServer(t)
	addr := srv.Addr()
	srv.Close()

	sim := New(Options{Root: root, Addr: addr, ReadyTimeout: 5 * time.Second, PollInterval: 10 * time.Millisecond})
	require.NoError(t, sim.Start(context.Background()))
	t.Cleanup(func() { _ = sim.Close() })

	err := sim.WaitReady(context.Background())
	assert.ErrorContains(t, err, "exited before accepting connections")
}

func TestWaitReadyTimesOut(t *testing.T) {
	t.Parallel()

	root := fakeGame(t, `exec sleep 30`)
	srv := simtest.NewServer(t)
	addr := srv.Addr()
	srv.Close()

	sim := New(Options{Root: root, Addr: addr, ReadyTimeout: 100 * time.Millisecond, PollInterval: 10 * time.Millisecond})
	require.NoError(t, sim.Start(context.Background()))
	t.Cleanup(func() { _ = sim.Close() })

	assert.ErrorIs(t, sim.WaitReady(context.Background()), context.DeadlineExceeded)
}

func TestCloseKillsGameThatIgnoresTermination(t *testing.T) {
	t.Parallel()

	root := fakeGame(t, `trap '' TERM; while true; do sleep 0.05; done`)
	sim := New(Options{Root: root, ShutdownTimeout: 200 * time.Millisecond})
	require.NoError(t, sim.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	started := time.Now()
	require.NoError(t, sim.Close())
	assert.GreaterOrEqual(t, time.Since(started), 200*time.Millisecond)
}

func TestWaitReadyBeforeStart(t *testing.T) {
	t.Parallel()

	assert.ErrorContains(t, New(Options{}).WaitReady(context.Background()), "not started")
}
