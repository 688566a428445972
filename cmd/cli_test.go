package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	csvreport "github.com/bnema/labrecruits-gym/internal/adapters/report/csv"
	"github.com/bnema/labrecruits-gym/internal/adapters/simulator/process"
	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/observability"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/bnema/labrecruits-gym/internal/protocol"
	"github.com/bnema/labrecruits-gym/internal/simtest"
	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLevel = "buttons_doors_1"

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"limit\"")
}

func TestWorkerCommandIsHidden(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "contest")
	assert.NotContains(t, stdout, "worker")
}

func TestContestRequiresDirectories(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "contest", "--xroot", "x", "--ldir", "y", testLevel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"rdir\" not set")
}

func TestContestRejectsUnknownIsolation(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "contest",
		"--xroot", home, "--ldir", home, "--rdir", home,
		"--isolation", "thread",
		testLevel,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported isolation")
}

func TestContestMissingLevelIsStartupFatal(t *testing.T) {
	home := t.TempDir()
	sim := stubSimulator(t)

	_, _, err := executeCLI(t, home, "contest",
		"--xroot", home, "--ldir", home, "--rdir", filepath.Join(home, "reports"),
		"--isolation", "inprocess",
		testLevel,
	)
	require.ErrorIs(t, err, domain.ErrLevelNotFound)
	assert.Equal(t, 1, ExitCode(err))
	assert.False(t, sim.started)
}

func TestContestCompletesAndWritesReport(t *testing.T) {
	home := t.TempDir()
	srv := simtest.NewServer(t)
	pointAtServer(t, srv)
	sim := stubSimulator(t)
	ldir := writeLevel(t, home)
	rdir := filepath.Join(home, "reports")

	stdout, _, err := executeCLI(t, home, "contest",
		"--xroot", home, "--ldir", ldir, "--rdir", rdir,
		"--isolation", "inprocess",
		"--time", "30",
		testLevel,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.True(t, sim.started)
	assert.True(t, sim.closed)

	assert.Contains(t, stdout, "** START "+testLevel)
	assert.Contains(t, stdout, "completed")
	assert.Contains(t, stdout, "report_"+testLevel+".csv")

	report, err := csvreport.Read(filepath.Join(rdir, "report_"+testLevel+".csv"))
	require.NoError(t, err)
	assert.True(t, report.Relations.Contains("button0", "door0"))
	assert.Equal(t, 1, report.Relations.Len())

	stdout, _, err = executeCLI(t, home, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "completed")
	assert.Contains(t, stdout, "level "+testLevel)
	assert.Contains(t, stdout, "1 relations")
}

func TestExplorePrintsDiscoveredLogic(t *testing.T) {
	home := t.TempDir()
	srv := simtest.NewServer(t)
	pointAtServer(t, srv)
	sim := stubSimulator(t)
	ldir := writeLevel(t, home)

	stdout, _, err := executeCLI(t, home, "explore", "--xroot", home, "--ldir", ldir, testLevel)
	require.NoError(t, err)
	assert.Equal(t, "Button button0 toggles door0\n", stdout)
	assert.True(t, sim.closed)
	assert.Equal(t, protocol.RequestDisconnect, srv.Commands()[len(srv.Commands())-1])
}

func TestContestAppliesLinkOverrides(t *testing.T) {
	home := t.TempDir()
	srv := simtest.NewServer(t)
	pointAtServer(t, srv)
	stubSimulator(t)
	ldir := writeLevel(t, home)

	_, _, err := executeCLI(t, home, "links", "add", testLevel, "button1", "door0")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "contest",
		"--xroot", home, "--ldir", ldir, "--rdir", home,
		"--isolation", "inprocess",
		"--strategy", "idle",
		testLevel,
	)
	require.NoError(t, err)

	var loads []simtest.Received
	for _, req := range srv.Received() {
		if req.Cmd == protocol.RequestInit {
			loads = append(loads, req)
		}
	}
	require.Len(t, loads, 1)
	require.NotNil(t, loads[0].Init)
	assert.Len(t, loads[0].Init.AddLinks, 1)
	assert.Contains(t, string(loads[0].Raw), "button1")
}

func TestWorkerCommandEmitsReports(t *testing.T) {
	home := t.TempDir()
	srv := simtest.NewServer(t)
	ldir := writeLevel(t, home)

	stdout, _, err := executeCLI(t, home, "worker",
		"--ldir", ldir,
		"--strategy", "survey",
		"--host", srv.Host(),
		"--port", strconv.Itoa(srv.Port()),
		testLevel,
	)
	require.NoError(t, err)

	reports := decodeReports(t, stdout)
	require.Len(t, reports, 2)
	assert.Equal(t, application.WorkerPhaseReady, reports[0].Phase)
	assert.Equal(t, application.WorkerPhaseDone, reports[1].Phase)
	assert.Equal(t, [][2]string{{"button0", "door0"}}, reports[1].Relations)
	assert.Empty(t, reports[1].Error)
}

func TestWorkerCommandReportsBeforeDisconnect(t *testing.T) {
	home := t.TempDir()
	release := make(chan struct{})
	srv := simtest.NewServer(t, holdDisconnect(release))
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)
	ldir := writeLevel(t, home)

	t.Setenv("HOME", home)
	t.Setenv("LRGYM_TRANSPORT_CLOSE_TIMEOUT", "30s")
	homedir.DisableCache = true
	observability.ResetForTest()

	stdout := newReportWatcher()
	root := newRootCmd()
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"worker",
		"--ldir", ldir,
		"--strategy", "survey",
		"--host", srv.Host(),
		"--port", strconv.Itoa(srv.Port()),
		testLevel,
	})

	finished := make(chan error, 1)
	go func() { finished <- root.ExecuteContext(context.Background()) }()

	select {
	case <-stdout.done:
	case err := <-finished:
		t.Fatalf("worker returned before reporting: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("no done report while the disconnect was pending")
	}
	select {
	case err := <-finished:
		t.Fatalf("worker returned while the disconnect was pending: %v", err)
	default:
	}

	unblock()
	require.NoError(t, <-finished)
	assert.Equal(t, protocol.RequestDisconnect, srv.Commands()[len(srv.Commands())-1])

	reports := decodeReports(t, stdout.String())
	require.Len(t, reports, 2)
	assert.Equal(t, application.WorkerPhaseDone, reports[1].Phase)
	assert.Equal(t, [][2]string{{"button0", "door0"}}, reports[1].Relations)
}

func TestContestCompletesWhenDisconnectIsSlow(t *testing.T) {
	home := t.TempDir()
	release := make(chan struct{})
	srv := simtest.NewServer(t, holdDisconnect(release))
	t.Cleanup(func() { close(release) })
	pointAtServer(t, srv)
	t.Setenv("LRGYM_TRANSPORT_CLOSE_TIMEOUT", "100ms")
	stubSimulator(t)
	ldir := writeLevel(t, home)
	rdir := filepath.Join(home, "reports")

	_, _, err := executeCLI(t, home, "contest",
		"--xroot", home, "--ldir", ldir, "--rdir", rdir,
		"--isolation", "inprocess",
		"--time", "30",
		testLevel,
	)
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))

	report, err := csvreport.Read(filepath.Join(rdir, "report_"+testLevel+".csv"))
	require.NoError(t, err)
	assert.True(t, report.Relations.Contains("button0", "door0"))
}

func TestWorkerCommandReportsStartupFailure(t *testing.T) {
	home := t.TempDir()
	srv := simtest.NewServer(t)
	addr := srv.Addr()
	srv.Close()
	host, port, ok := strings.Cut(addr, ":")
	require.True(t, ok)
	ldir := writeLevel(t, home)

	stdout, _, err := executeCLI(t, home, "worker", "--ldir", ldir, "--host", host, "--port", port, testLevel)
	require.Error(t, err)

	reports := decodeReports(t, stdout)
	require.Len(t, reports, 1)
	assert.Equal(t, application.WorkerPhaseDone, reports[0].Phase)
	assert.NotEmpty(t, reports[0].Error)
}

func TestLinksAddListRemove(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "links", "add", testLevel, "button0", "door3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "door3")

	stdout, _, err = executeCLI(t, home, "links", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, testLevel)
	assert.Contains(t, stdout, "+ button0")

	stdout, _, err = executeCLI(t, home, "links", "remove", testLevel, "button0", "door3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "- button0")
	assert.NotContains(t, stdout, "+ button0")

	_, err = os.Stat(filepath.Join(home, ".config", "lrgym", "levels.toml"))
	assert.NoError(t, err)
}

func TestLinksAddRequiresThreeArguments(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "links", "add", testLevel, "button0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg(s)")
}

func TestReportShow(t *testing.T) {
	home := t.TempDir()
	store, err := csvreport.NewStore(filepath.Join(home, "reports"))
	require.NoError(t, err)
	path, err := store.Write(context.Background(), testLevel, 1200*time.Millisecond,
		domain.NewRelationSet(domain.RelationPair{Source: "button2", Target: "door1"}))
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "report", "show", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.2s")
	assert.Contains(t, stdout, "button2")
	assert.Contains(t, stdout, "door1")

	_, _, err = executeCLI(t, home, "report", "show", filepath.Join(home, "missing.csv"))
	require.Error(t, err)
}

func TestHistoryEmptyAndDisabled(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded yet.")

	t.Setenv("LRGYM_HISTORY_ENABLED", "false")
	_, _, err = executeCLI(t, home, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run history is disabled")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "cancelled", err: &exitError{code: domain.ExitCancelled, err: errors.New("run cancelled")}, want: 2},
		{name: "wrapped terminated", err: fmt.Errorf("contest: %w", &exitError{code: domain.ExitTerminated, err: errors.New("x")}), want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestWorkerArgs(t *testing.T) {
	session := domain.SessionConfig{Host: "localhost", Port: 8053, LevelName: testLevel}

	assert.Equal(t, []string{
		"worker", "--config", "/etc/lrgym.toml",
		"--ldir", "~/levels", "--strategy", "survey",
		"--host", "localhost", "--port", "8053",
		testLevel,
	}, workerArgs("/etc/lrgym.toml", session, "~/levels", "survey"))

	assert.Equal(t, "worker", workerArgs("", session, "l", "idle")[0])
	assert.NotContains(t, workerArgs("", session, "l", "idle"), "--config")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	observability.ResetForTest()

	root := newRootCmd()
	stdout := &strings.Builder{}
	stderr := &strings.Builder{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

type fakeSimulator struct {
	started bool
	closed  bool
}

func (s *fakeSimulator) Start(context.Context) error {
	s.started = true
	return nil
}

func (s *fakeSimulator) WaitReady(context.Context) error {
	return nil
}

func (s *fakeSimulator) Close() error {
	s.closed = true
	return nil
}

// stubSimulator stands in for the game process; tests point the session at a
// simtest server instead.
func stubSimulator(t *testing.T) *fakeSimulator {
	t.Helper()

	sim := &fakeSimulator{}
	original := newSimulator
	t.Cleanup(func() { newSimulator = original })
	newSimulator = func(process.Options) ports.Simulator { return sim }
	return sim
}

func pointAtServer(t *testing.T, srv *simtest.Server) {
	t.Helper()
	t.Setenv("LRGYM_SIMULATOR_HOST", srv.Host())
	t.Setenv("LRGYM_SIMULATOR_PORT", strconv.Itoa(srv.Port()))
	t.Setenv("LRGYM_HARNESS_STEP_DELAY", "0s")
}

func writeLevel(t *testing.T, home string) string {
	t.Helper()

	dir := filepath.Join(home, "levels")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, testLevel+".csv"), []byte("w,w,w\nf,f:a^agent0,f\n"), 0o644))
	return dir
}

func decodeReports(t *testing.T, stdout string) []application.WorkerReport {
	t.Helper()

	var reports []application.WorkerReport
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		var report application.WorkerReport
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &report), scanner.Text())
		reports = append(reports, report)
	}
	return reports
}

// holdDisconnect keeps the disconnect reply back until release is closed.
// Register the release after simtest.NewServer so it runs first on cleanup.
func holdDisconnect(release <-chan struct{}) simtest.Option {
	return simtest.WithHandler(func(req simtest.Received) ([]byte, bool) {
		if req.Cmd == protocol.RequestDisconnect {
			<-release
		}
		return nil, false
	})
}

// reportWatcher collects worker output and closes done at the first done
// report.
type reportWatcher struct {
	mu   sync.Mutex
	buf  strings.Builder
	once sync.Once
	done chan struct{}
}

func newReportWatcher() *reportWatcher {
	return &reportWatcher{done: make(chan struct{})}
}

func (w *reportWatcher) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.buf.Write(p)
	if strings.Contains(w.buf.String(), `"phase":"done"`) {
		w.once.Do(func() { close(w.done) })
	}
	return n, err
}

func (w *reportWatcher) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}
