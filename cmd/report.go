package cmd

import (
	"fmt"

	"github.com/bnema/labrecruits-gym/internal/adapters/render/summary"
	csvreport "github.com/bnema/labrecruits-gym/internal/adapters/report/csv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

func newReportCmd(_ *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect contest reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <file>",
		Short: "Print the elapsed time and relations of a report file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := homedir.Expand(args[0])
			if err != nil {
				return fmt.Errorf("expand report path: %w", err)
			}

			report, err := csvreport.Read(path)
			if err != nil {
				return err
			}

			rendered, err := summary.RenderReport(path, report.Elapsed, report.Relations)
			if err != nil {
				return fmt.Errorf("render report: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	})

	return cmd
}
