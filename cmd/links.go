package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/labrecruits-gym/internal/adapters/render/summary"
	"github.com/bnema/labrecruits-gym/internal/application"
	"github.com/bnema/labrecruits-gym/internal/domain"
	"github.com/spf13/cobra"
)

func newLinksCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage per-level switch/door link overrides sent with load-world",
	}

	cmd.AddCommand(
		newLinkChangeCmd(app, "add", "Force <switch> to operate <door> on <level>", (*application.ProfileService).AddLink),
		newLinkChangeCmd(app, "remove", "Stop <switch> from operating <door> on <level>", (*application.ProfileService).RemoveLink),
		newLinksListCmd(app),
	)

	return cmd
}

type linkChange func(*application.ProfileService, context.Context, string, domain.Link) (domain.LevelProfile, error)

func newLinkChangeCmd(app *app, use, short string, change linkChange) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <level> <switch> <door>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := app.profileService()
			if err != nil {
				return err
			}

			profile, err := change(profiles, cmd.Context(), args[0], domain.Link{Switch: args[1], Door: args[2]})
			if err != nil {
				return err
			}

			rendered, err := summary.RenderProfiles([]domain.LevelProfile{profile})
			if err != nil {
				return fmt.Errorf("render level profile: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
}

func newLinksListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List level profiles and their link overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profileService()
			if err != nil {
				return err
			}

			list, err := profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			rendered, err := summary.RenderProfiles(list)
			if err != nil {
				return fmt.Errorf("render level profiles: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
}
