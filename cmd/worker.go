package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/bnema/labrecruits-gym/internal/application"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type workerOptions struct {
	ldir     string
	strategy string
	host     string
	port     int
}

// newWorkerCmd is the child side of process isolation. It prints one
// WorkerReport line once the world is loaded and one when it stops.
func newWorkerCmd(app *app) *cobra.Command {
	var opts workerOptions

	cmd := &cobra.Command{
		Use:    "worker <levelname>",
		Short:  "Run a strategy as a supervised child process",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				app.cfg.Simulator.Host = opts.host
			}
			if cmd.Flags().Changed("port") {
				app.cfg.Simulator.Port = opts.port
			}
			if cmd.Flags().Changed("strategy") {
				app.cfg.Harness.Strategy = opts.strategy
			}
			return runWorker(cmd, app, opts.ldir, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ldir, "ldir", "", "Directory holding <levelname>.csv")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Strategy to run")
	cmd.Flags().StringVar(&opts.host, "host", "", "Simulator host")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Simulator port")
	_ = cmd.MarkFlagRequired("ldir")

	return cmd
}

func runWorker(cmd *cobra.Command, app *app, levelsDir, level string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	enc := json.NewEncoder(cmd.OutOrStdout())
	logger := app.logger.With(zap.String("level_name", level), zap.Int("pid", os.Getpid()))

	fail := func(err error) error {
		if encErr := enc.Encode(application.NewWorkerReport(application.WorkerResult{Err: err})); encErr != nil {
			logger.Warn("failed to emit worker report", zap.Error(encErr))
		}
		return err
	}

	session, err := app.session(ctx, level, levelsDir)
	if err != nil {
		return fail(err)
	}
	algorithm, err := app.algorithm(app.cfg.Harness.Strategy)
	if err != nil {
		return fail(err)
	}
	env, err := app.environment(session)
	if err != nil {
		return fail(err)
	}

	w, err := application.InProcess{
		Open:      application.OpenEnvironment(env),
		Algorithm: algorithm,
		Logger:    logger,
	}.StartWorker(ctx)
	if err != nil {
		return fail(err)
	}
	if err := enc.Encode(application.WorkerReport{Phase: application.WorkerPhaseReady}); err != nil {
		w.Terminate()
		return err
	}

	select {
	case <-w.Done():
	case <-ctx.Done():
		logger.Info("interrupt received, stopping strategy")
		w.Cancel()
		<-w.Done()
	}
	// The parent reads the result from this line, so it goes out before the
	// disconnect handshake. Close is bounded by transport.close_timeout.
	reportErr := enc.Encode(application.NewWorkerReport(w.Result()))

	if err := w.Close(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("failed to close simulator session", zap.Error(err))
	}
	return reportErr
}
