package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyview/internal/config"
	"storyview/internal/format"
	"storyview/internal/logging"
	"storyview/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type App struct {
	Dir        string
	ConfigPath string
	UserID     string
	PrettyJSON bool
	Format     string

	cfg config.Config
	log *zap.Logger
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "storyview",
		Short:        "Ephemeral stories in your terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Watch everyone's stories
  storyview

  # Open one story directly (shortcut for: storyview view --story <story-id>)
  storyview story-k3v9

  # Scriptable playback
  printf 'next\nnext\n' | storyview play

  # Post a story
  storyview stories create --kind image --url ./beach.png --overlay "Sunny@50,80"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand on a terminal => viewer.
			if len(args) == 0 && isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout()) {
				return runViewer(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.log != nil {
			_ = app.log.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (default: $STORYVIEW_DIR or ~/.storyview)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default: <dir>/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", "", "Act as this user id (overrides the stored current user)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STORYVIEW_FORMAT", "json"), "Output format (json|yaml|table)")

	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newPlayCmd(app))
	cmd.AddCommand(newStoriesCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newSweepCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves config, data dir and logger. Flags win over config, config
// wins over defaults.
func (app *App) setup(cmd *cobra.Command) error {
	path := app.ConfigPath
	if path == "" && app.Dir != "" {
		if p := filepath.Join(app.Dir, config.FileName); fileExists(p) {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	if app.Dir == "" {
		app.Dir = cfg.Dir
	}
	if app.UserID == "" {
		app.UserID = cfg.User
	}
	if app.now == nil {
		app.now = time.Now
	}

	lg, err := logging.New(app.Dir, cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("logger: %w", err))
	}
	app.log = lg.With(zap.String("cmd", cmd.CommandPath()))
	return nil
}

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, app.Dir)
	if err != nil {
		return nil, fmt.Errorf("open store in %s: %w", app.Dir, err)
	}
	return st, nil
}

// currentUser resolves the acting user: --user, config, then the stored
// current user.
func (app *App) currentUser(ctx context.Context, st *store.Store) (string, error) {
	id := strings.TrimSpace(app.UserID)
	if id == "" {
		cur, err := st.CurrentUser(ctx)
		if err != nil {
			return "", err
		}
		id = cur
	}
	if id == "" {
		return "", errors.New("no current user; run `storyview users create --name <name> --use` (or pass --user)")
	}
	if _, err := st.GetUser(ctx, id); err != nil {
		return "", mapNotFound("user", id, err)
	}
	return id, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func fileExists(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeData wraps data in the {"data": ...} envelope, or prints table when
// the table format was requested.
func writeData(cmd *cobra.Command, app *App, data any, table format.Tabular) error {
	if app.Format == "table" && table != nil {
		return format.WriteTable(cmd.OutOrStdout(), table)
	}
	return writeOut(cmd, app, map[string]any{"data": data})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
