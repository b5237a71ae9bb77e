package cli

import (
	"errors"

	"storyview/internal/media"
	"storyview/internal/store"
	"storyview/internal/story"
	"storyview/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newViewCmd(app *App) *cobra.Command {
	var storyID string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the full-screen story viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd, app, storyID)
		},
	}
	cmd.Flags().StringVar(&storyID, "story", "", "Start at this story id (deep link)")
	return cmd
}

func (app *App) sessionConfig(userID, target string) story.Config {
	return story.Config{
		CurrentUserID: userID,
		TargetID:      target,
		Duration:      app.cfg.Playback.StoryDuration,
	}
}

func (app *App) gestures() story.Gestures {
	return story.Gestures{
		Threshold: app.cfg.Gestures.SwipeThreshold,
		TapSlop:   app.cfg.Gestures.TapSlop,
	}
}

func (app *App) viewerOptions(st *store.Store, userID, target string) tui.Options {
	return tui.Options{
		Source:        store.Source{Store: st, UserID: userID, Now: app.now},
		Media:         media.Loader{BaseDir: app.Dir},
		Session:       app.sessionConfig(userID, target),
		Gestures:      app.gestures(),
		LongPress:     app.cfg.Gestures.LongPress,
		FrameInterval: app.cfg.Playback.FrameInterval,
		CellWidth:     app.cfg.Gestures.CellWidth,
		CellHeight:    app.cfg.Gestures.CellHeight,
		Logger:        app.log.Named("tui"),
	}
}

// runViewer shows the viewer. When the owner asks for another story, the
// create form runs and the viewer reopens on the new story.
func runViewer(cmd *cobra.Command, app *App, target string) error {
	ctx := cmd.Context()
	st, err := app.openStore(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	userID, err := app.currentUser(ctx, st)
	if err != nil {
		return writeErr(cmd, err)
	}

	opts := app.viewerOptions(st, userID, target)
	for {
		res, err := tui.Run(ctx, opts)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log.Info("viewer closed",
			zap.String("last_story", res.LastStoryID),
			zap.Bool("create_requested", res.CreateRequested))
		if !res.CreateRequested {
			return nil
		}

		created, err := createInteractive(cmd, app, st, userID)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return writeErr(cmd, err)
		}
		opts.Session.TargetID = created.ID
	}
}
