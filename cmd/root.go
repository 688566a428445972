package cmd

import (
	"context"
	"errors"

	"github.com/bnema/labrecruits-gym/internal/version"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "lrgym",
		Short:         "Lab Recruits gym (lrgym): run relation-discovery agents against the simulator",
		Long:          "lrgym drives the Lab Recruits simulator over its JSON line protocol, runs relation-discovery strategies under a time budget and writes contest reports.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.load(cmd)
		},
	}
	rootCmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	rootCmd.PersistentFlags().StringVarP(&app.configFile, "config", "c", "", "config file (default ./config.toml or ~/.config/lrgym/config.toml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newContestCmd(app),
		newExploreCmd(app),
		newWorkerCmd(app),
		newReportCmd(app),
		newHistoryCmd(app),
		newLinksCmd(app),
	)

	return rootCmd
}

// exitError carries a process exit status other than the generic failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return 1
}
