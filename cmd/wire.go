package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/labrecruits-gym/internal/adapters/history/sqlite"
	"github.com/bnema/labrecruits-gym/internal/adapters/render/summary"
	tomlrepo "github.com/bnema/labrecruits-gym/internal/adapters/repo/toml"
	"github.com/bnema/labrecruits-gym/internal/adapters/simulator/process"
	"github.com/bnema/labrecruits-gym/internal/adapters/transport/tcp"
	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/config"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/observability"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/bnema/labrecruits-gym/internal/strategy"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Seams replaced by tests.
var (
	newSimulator = func(opts process.Options) ports.Simulator {
		return process.New(opts)
	}
	isTerminal = func(w io.Writer) bool {
		f, ok := w.(*os.File)
		return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}
)

type app struct {
	configFile string

	viper  *viper.Viper
	cfg    config.Config
	logger *zap.Logger

	runRenderer     func(summary.Run) (string, error)
	historyRenderer func([]domain.RunRecord, summary.RenderOptions) (string, error)
	now             func() time.Time
}

func newApp() *app {
	return &app{
		logger:          zap.NewNop(),
		runRenderer:     summary.RenderRun,
		historyRenderer: summary.RenderHistory,
		now:             time.Now,
	}
}

// load reads the configuration and installs the process logger. Logs go to
// stderr so stdout stays reserved for command output and worker reports.
func (a *app) load(cmd *cobra.Command) error {
	v := viper.New()
	cfg, err := config.Load(v, a.configFile)
	if err != nil {
		return err
	}

	observability.Initialize(cfg.Logger, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))
	a.viper = v
	a.cfg = cfg
	a.logger = observability.GetLogger()
	return nil
}

func (a *app) profileService() (*application.ProfileService, error) {
	repo, err := tomlrepo.NewRepository(a.viper)
	if err != nil {
		return nil, fmt.Errorf("wire level profile repository: %w", err)
	}
	return application.NewProfileService(repo, ports.SystemClock{}), nil
}

// openHistory returns nil when run history is disabled.
func (a *app) openHistory(ctx context.Context) (*sqlite.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, nil
	}
	store, err := sqlite.Open(ctx, a.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return store, nil
}

// session resolves the level file and applies any stored link overrides.
func (a *app) session(ctx context.Context, level, levelsDir string) (domain.SessionConfig, error) {
	levelsDir, err := homedir.Expand(levelsDir)
	if err != nil {
		return domain.SessionConfig{}, fmt.Errorf("expand level directory: %w", err)
	}

	session, err := a.cfg.SessionDefaults().WithLevel(level, levelsDir)
	if err != nil {
		return domain.SessionConfig{}, err
	}

	profiles, err := a.profileService()
	if err != nil {
		return domain.SessionConfig{}, err
	}
	return profiles.Apply(ctx, session)
}

func (a *app) environment(session domain.SessionConfig) (*application.Environment, error) {
	dialer := tcp.Dialer{Options: tcp.Options{
		Debug:       a.cfg.Transport.Debug,
		DialTimeout: a.cfg.Transport.DialTimeout,
		IOTimeout:   a.cfg.Transport.IOTimeout,
		Logger:      a.logger,
	}}
	return application.NewEnvironment(session, dialer, a.logger, application.WithCloseTimeout(a.cfg.Transport.CloseTimeout))
}

func (a *app) simulator(root string, graphics bool, addr string) ports.Simulator {
	return newSimulator(process.Options{
		Root:            root,
		Graphics:        graphics && a.cfg.Simulator.Graphics,
		Addr:            addr,
		ReadyTimeout:    a.cfg.Simulator.ReadyTimeout,
		ShutdownTimeout: a.cfg.Simulator.ShutdownTimeout,
		Logger:          a.logger,
	})
}

func (a *app) algorithm(name string) (application.Algorithm, error) {
	return strategy.Lookup(name, strategy.Options{
		AgentID:      a.cfg.Session.AgentID,
		StepInterval: a.cfg.Harness.StepDelay,
		Logger:       a.logger,
	})
}
