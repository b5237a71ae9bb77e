package cli

import (
	"storyview/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			cfg.Dir = app.Dir
			cfg.User = app.UserID
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "env",
		Short: "List the environment variables storyview reads",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(config.Usage() + "\n"))
			return err
		},
	})
	return cmd
}
