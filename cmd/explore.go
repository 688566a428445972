package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exploreOptions struct {
	noGraphics bool
	xroot      string
	ldir       string
	strategy   string
}

func newExploreCmd(app *app) *cobra.Command {
	var opts exploreOptions

	cmd := &cobra.Command{
		Use:   "explore <levelname>",
		Short: "Run a strategy without supervision and print the discovered logic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("strategy") {
				app.cfg.Harness.Strategy = opts.strategy
			}
			return runExplore(cmd, app, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.noGraphics, "ng", false, "Run the simulator without graphics")
	cmd.Flags().StringVar(&opts.xroot, "xroot", "", "Directory holding the gym/ simulator tree")
	cmd.Flags().StringVar(&opts.ldir, "ldir", "", "Directory holding <levelname>.csv")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Strategy to run (default from config)")
	_ = cmd.MarkFlagRequired("xroot")
	_ = cmd.MarkFlagRequired("ldir")

	return cmd
}

func runExplore(cmd *cobra.Command, app *app, opts exploreOptions, level string) error {
	ctx := cmd.Context()
	logger := app.logger.With(zap.String("level_name", level))

	session, err := app.session(ctx, level, opts.ldir)
	if err != nil {
		return err
	}
	algorithm, err := app.algorithm(app.cfg.Harness.Strategy)
	if err != nil {
		return err
	}

	sim := withWaitSpinner(app.simulator(opts.xroot, !opts.noGraphics, session.Addr()), session.Addr(), cmd.ErrOrStderr())
	defer func() {
		if closeErr := sim.Close(); closeErr != nil {
			logger.Warn("simulator cleanup failed", zap.Error(closeErr))
		}
	}()
	if err := sim.Start(ctx); err != nil {
		return fmt.Errorf("start simulator: %w", err)
	}
	if err := sim.WaitReady(ctx); err != nil {
		return fmt.Errorf("wait for simulator: %w", err)
	}

	env, err := app.environment(session)
	if err != nil {
		return err
	}
	if _, err := application.OpenEnvironment(env)(ctx); err != nil {
		return err
	}
	defer func() {
		if closeErr := env.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("failed to close simulator session", zap.Error(closeErr))
		}
	}()

	relations, err := algorithm(ctx, env)
	for _, pair := range relations.Pairs() {
		fmt.Fprintf(cmd.OutOrStdout(), "Button %s toggles %s\n", pair.Source, pair.Target)
	}
	return err
}
