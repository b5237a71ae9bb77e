package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"storyview/internal/model"
	"storyview/internal/store"
	"storyview/internal/story"

	"github.com/spf13/cobra"
)

func newStoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stories",
		Aliases: []string{"story"},
		Short:   "List, post and manage stories",
	}

	cmd.AddCommand(newStoriesListCmd(app))
	cmd.AddCommand(newStoriesShowCmd(app))
	cmd.AddCommand(newStoriesCreateCmd(app))
	cmd.AddCommand(newStoriesDeleteCmd(app))
	cmd.AddCommand(newStoriesViewCmd(app))
	cmd.AddCommand(newStoriesReplyCmd(app))
	cmd.AddCommand(newStoriesSeedCmd(app))

	return cmd
}

func newStoriesListCmd(app *App) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unexpired stories in playback order",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			now := app.now()
			stories, err := st.FetchStories(ctx, userID, now)
			if err != nil {
				return writeErr(cmd, err)
			}
			if mine {
				own := make([]model.Story, 0, len(stories))
				for _, s := range stories {
					if s.IsOwnedBy(userID) {
						own = append(own, s)
					}
				}
				stories = own
			}
			return writeData(cmd, app, stories, storyTable{stories: stories, userID: userID, now: now})
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only stories posted by the current user")
	return cmd
}

func newStoriesShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <story-id>",
		Short: "Show a story (with viewers and replies when it is yours)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			id := args[0]
			s, err := st.GetStory(ctx, id)
			if err != nil {
				return writeErr(cmd, mapNotFound("story", id, err))
			}
			now := app.now()
			out := map[string]any{
				"story":   s,
				"own":     s.IsOwnedBy(userID),
				"expired": s.Expired(now),
			}
			if !s.IsOwnedBy(userID) {
				return writeOut(cmd, app, map[string]any{"data": out})
			}

			viewers, err := st.Viewers(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			replies, err := st.ListReplies(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			s.Viewers = viewers
			var sheet story.ViewerSheet
			sheet.Open(s)
			rows := sheet.Rows(now)
			if rows == nil {
				rows = []story.ViewerRow{}
			}
			out["story"] = s
			out["viewers"] = rows
			out["replies"] = replies
			return writeData(cmd, app, out, viewerTable{rows: rows})
		},
	}
	return cmd
}

func newStoriesCreateCmd(app *App) *cobra.Command {
	var (
		kind     string
		url      string
		text     string
		ttl      time.Duration
		overlays []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new story as the current user",
		Long: strings.TrimSpace(`
Post a new story. Without --kind/--url/--text on a terminal, an interactive
form asks for the details.

Overlays use "text@x,y" with x and y as percentages of the screen; prefix
with "sticker:" for a sticker.`),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if kind == "" && url == "" && text == "" {
				if !isTerminal(cmd.InOrStdin()) {
					return writeErr(cmd, errors.New("missing --kind with --url or --text"))
				}
				created, err := createInteractive(cmd, app, st, userID)
				if err != nil {
					return writeErr(cmd, err)
				}
				app.log.Info("story created", storyField(created))
				return writeOut(cmd, app, map[string]any{"data": created})
			}

			if kind == "" {
				kind = string(model.MediaKindImage)
				if text != "" {
					kind = string(model.MediaKindText)
				}
			}
			in := store.NewStory{
				AuthorID:  userID,
				Media:     model.Media{Kind: model.MediaKind(kind), URL: absMediaURL(url), Body: text},
				CreatedAt: app.now(),
				TTL:       ttl,
			}
			for _, raw := range overlays {
				o, err := parseOverlay(raw)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.Overlays = append(in.Overlays, o)
			}

			created, err := st.CreateStory(ctx, in)
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("story created", storyField(created))
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Media kind (image|video|text)")
	cmd.Flags().StringVar(&url, "url", "", "Image or video path/URL")
	cmd.Flags().StringVar(&text, "text", "", "Markdown body for a text story")
	cmd.Flags().DurationVar(&ttl, "ttl", store.DefaultTTL, "How long the story stays visible")
	cmd.Flags().StringArrayVar(&overlays, "overlay", nil, `Overlay "text@x,y" (repeatable; "sticker:" prefix for stickers)`)
	return cmd
}

func newStoriesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete one of your stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			id := args[0]
			src := store.Source{Store: st, UserID: userID, Now: app.now}
			if err := src.DeleteStory(ctx, id); err != nil {
				if errors.Is(err, story.ErrNotOwner) {
					return writeErr(cmd, errOwnerOnly(userID, id))
				}
				return writeErr(cmd, mapNotFound("story", id, err))
			}
			app.log.Info("story deleted", zapStory(id))
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}

func newStoriesViewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <story-id>",
		Short: "Record that the current user has seen a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			id := args[0]
			added, err := st.RecordView(ctx, id, userID, app.now())
			if err != nil {
				return writeErr(cmd, mapNotFound("story", id, err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"storyId": id, "viewerId": userID, "recorded": added}})
		},
	}
	return cmd
}

func newStoriesReplyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reply <story-id> <text>",
		Short: "Reply to a story",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			id := args[0]
			body := strings.TrimSpace(strings.Join(args[1:], " "))
			r, err := st.AddReply(ctx, id, userID, body, app.now())
			if err != nil {
				return writeErr(cmd, mapNotFound("story", id, err))
			}
			return writeOut(cmd, app, map[string]any{"data": r})
		},
	}
	return cmd
}

func newStoriesSeedCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load users and stories from a YAML fixture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			fx, err := store.ParseFixtures(f)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Relative media paths are relative to the fixture file.
			base := filepath.Dir(args[0])
			for i := range fx.Stories {
				u := fx.Stories[i].Media.URL
				if u != "" && !isRemote(u) && !filepath.IsAbs(u) {
					fx.Stories[i].Media.URL = absMediaURL(filepath.Join(base, u))
				}
			}

			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			res, err := st.Seed(ctx, fx, app.now())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	return cmd
}

// parseOverlay reads "text@x,y" or "sticker:text@x,y".
func parseOverlay(raw string) (model.Overlay, error) {
	o := model.Overlay{Kind: model.OverlayKindText}
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "sticker:"); ok {
		o.Kind = model.OverlayKindSticker
		s = rest
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return o, fmt.Errorf("overlay %q: want text@x,y", raw)
	}
	o.Text = s[:at]
	xs, ys, ok := strings.Cut(s[at+1:], ",")
	if !ok {
		return o, fmt.Errorf("overlay %q: want text@x,y", raw)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil || x < 0 || x > 100 || y < 0 || y > 100 {
		return o, fmt.Errorf("overlay %q: x and y must be percentages between 0 and 100", raw)
	}
	o.X, o.Y = x, y
	return o, nil
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// absMediaURL pins local paths to absolute so stories play from any cwd.
func absMediaURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || isRemote(u) || filepath.IsAbs(u) {
		return u
	}
	if abs, err := filepath.Abs(u); err == nil {
		return abs
	}
	return u
}
