package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bnema/labrecruits-gym/internal/adapters/render/summary"
	csvreport "github.com/bnema/labrecruits-gym/internal/adapters/report/csv"
	"github.com/bnema/labrecruits-gym/internal/adapters/worker/subprocess"
	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/config"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/bnema/labrecruits-gym/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type contestOptions struct {
	noGraphics bool
	seconds    int
	xroot      string
	ldir       string
	rdir       string
	strategy   string
	isolation  string
	grace      time.Duration
}

func newContestCmd(app *app) *cobra.Command {
	var opts contestOptions

	cmd := &cobra.Command{
		Use:   "contest <levelname>",
		Short: "Run a strategy on a level under a time budget and write its report",
		Long: "contest launches the simulator, runs the selected strategy in a supervised worker and writes " +
			"report_<levelname>.csv. Exit status: 0 completed, 1 failed, 2 cancelled, 3 terminated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("strategy") {
				app.cfg.Harness.Strategy = opts.strategy
			}
			if cmd.Flags().Changed("isolation") {
				app.cfg.Harness.Isolation = opts.isolation
			}
			if cmd.Flags().Changed("grace") {
				app.cfg.Harness.Grace = opts.grace
			}
			if err := app.cfg.Validate(); err != nil {
				return err
			}
			if opts.seconds <= 0 {
				return fmt.Errorf("--time must be positive, got %d", opts.seconds)
			}
			return runContest(cmd, app, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.noGraphics, "ng", false, "Run the simulator without graphics")
	cmd.Flags().IntVar(&opts.seconds, "time", 60, "Time budget in seconds")
	cmd.Flags().StringVar(&opts.xroot, "xroot", "", "Directory holding the gym/ simulator tree")
	cmd.Flags().StringVar(&opts.ldir, "ldir", "", "Directory holding <levelname>.csv")
	cmd.Flags().StringVar(&opts.rdir, "rdir", "", "Directory the report is written to")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Strategy to run (default from config)")
	cmd.Flags().StringVar(&opts.isolation, "isolation", "", "Worker isolation: process or inprocess (default from config)")
	cmd.Flags().DurationVar(&opts.grace, "grace", application.DefaultGrace, "Time a cancelled worker gets to stop before it is terminated")
	_ = cmd.MarkFlagRequired("xroot")
	_ = cmd.MarkFlagRequired("ldir")
	_ = cmd.MarkFlagRequired("rdir")

	return cmd
}

func runContest(cmd *cobra.Command, app *app, opts contestOptions, level string) error {
	ctx := cmd.Context()
	harnessCfg := app.cfg.Harness
	budget := time.Duration(opts.seconds) * time.Second
	logger := app.logger.With(zap.String("level_name", level))

	session, err := app.session(ctx, level, opts.ldir)
	if err != nil {
		return err
	}
	algorithm, err := app.algorithm(harnessCfg.Strategy)
	if err != nil {
		return err
	}

	reports, err := csvreport.NewStore(opts.rdir)
	if err != nil {
		return err
	}

	var runHistory ports.RunHistory
	history, err := app.openHistory(ctx)
	if err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
	} else if history != nil {
		defer history.Close()
		runHistory = history
	}

	var starter application.WorkerStarter
	switch harnessCfg.Isolation {
	case config.IsolationInProcess:
		env, err := app.environment(session)
		if err != nil {
			return err
		}
		starter = application.InProcess{
			Open:      application.OpenEnvironment(env),
			Algorithm: algorithm,
			Logger:    logger,
		}
	default:
		starter = subprocess.Starter{
			Args:        workerArgs(app.configFile, session, opts.ldir, harnessCfg.Strategy),
			ExitTimeout: app.cfg.Transport.CloseTimeout + time.Second,
			Logger:      logger,
		}
	}

	sim := withWaitSpinner(app.simulator(opts.xroot, !opts.noGraphics, session.Addr()), session.Addr(), cmd.ErrOrStderr())
	harness, err := application.NewHarness(application.HarnessOptions{
		Level:    level,
		Strategy: harnessCfg.Strategy,
		Budget:   budget,
		Grace:    harnessCfg.Grace,
	}, sim, reports, runHistory, ports.SystemClock{}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "** START %s (strategy %s, budget %s, grace %s)\n", level, harnessCfg.Strategy, budget, harnessCfg.Grace)

	result, err := harness.Run(ctx, starter)
	if err != nil {
		return err
	}

	rendered, err := app.runRenderer(summary.Run{
		RunID:      result.RunID,
		Level:      level,
		Strategy:   harnessCfg.Strategy,
		Outcome:    result.Outcome,
		Elapsed:    result.Elapsed,
		Relations:  result.Relations,
		ReportPath: result.ReportPath,
		Err:        result.Err,
	})
	if err != nil {
		return fmt.Errorf("render run summary: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	if code := result.ExitCode(); code != domain.ExitOK {
		err := fmt.Errorf("run %s %s", result.RunID, result.Outcome)
		if result.Err != nil {
			err = fmt.Errorf("%w: %w", err, result.Err)
		}
		return &exitError{code: code, err: err}
	}
	return nil
}

// workerArgs rebuilds the command line of the hidden worker command. The
// child inherits the environment, so LRGYM_* settings carry over.
func workerArgs(configFile string, session domain.SessionConfig, levelsDir, strategyName string) []string {
	args := []string{"worker"}
	if configFile != "" {
		args = append(args, "--config", configFile)
	}
	return append(args,
		"--ldir", levelsDir,
		"--strategy", strategyName,
		"--host", session.Host,
		"--port", strconv.Itoa(session.Port),
		session.LevelName,
	)
}
