package cli

import (
	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage local users",
	}

	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersUseCmd(app))

	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var name string
	var avatar string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			u, err := st.CreateUser(ctx, name, avatar)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := st.SetCurrentUser(ctx, u.ID); err != nil {
					return writeErr(cmd, err)
				}
				app.UserID = u.ID
			}
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar (an emoji works well)")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			users, err := st.ListUsers(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			current, err := st.CurrentUser(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.UserID != "" {
				current = app.UserID
			}
			return writeData(cmd, app,
				map[string]any{"currentUserId": current, "users": users},
				userTable{users: users, current: current, now: app.now()})
		},
	}
	return cmd
}

func newUsersUseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <user-id>",
		Short: "Set the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := args[0]
			if _, err := st.GetUser(ctx, id); err != nil {
				return writeErr(cmd, mapNotFound("user", id, err))
			}
			if err := st.SetCurrentUser(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			app.UserID = id
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentUserId": id}})
		},
	}
	return cmd
}
