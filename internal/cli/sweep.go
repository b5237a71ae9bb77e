package cli

import (
	"os/signal"
	"syscall"

	"storyview/internal/sweep"

	"github.com/spf13/cobra"
)

func newSweepCmd(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired stories",
		Long:  "Delete expired stories. Expired stories are already hidden from the viewer; sweeping reclaims their space.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			sw := sweep.Sweeper{Cleaner: st, Logger: app.log.Named("sweep")}
			if !watch {
				n, err := sw.RunOnce(ctx)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": n}})
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if _, err := sw.Schedule(ctx, app.cfg.Sweep.Every); err != nil {
				return writeErr(cmd, err)
			}
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and sweep every sweep.every")
	return cmd
}
