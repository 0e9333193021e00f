package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dianegit/develops-task-management/internal/admin"
	"github.com/dianegit/develops-task-management/internal/model"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin operations (admin role required)",
	}
	cmd.AddCommand(newAdminSnapshotCmd(app))
	cmd.AddCommand(newAdminUserStatusCmd(app))
	cmd.AddCommand(newAdminUserRoleCmd(app))
	return cmd
}

func newAdminSnapshotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch analytics, users, audit logs and security events as one batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			panel := admin.NewPanel(app.apiClient())
			view, err := panel.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			return app.printJSON(cmd, view.Snapshot)
		},
	}
}

func newAdminUserStatusCmd(app *App) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "user-status <user-id>",
		Short: "Activate or deactivate a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.apiClient().UpdateUserStatus(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			return app.printJSON(cmd, user)
		},
	}
	cmd.Flags().BoolVar(&active, "active", true, "Target active state")
	return cmd
}

func newAdminUserRoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "user-role <user-id> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := model.Role(args[1])
			switch role {
			case model.RoleUser, model.RoleAdmin, model.RoleAuditor:
			default:
				return fmt.Errorf("invalid role %q (want user|admin|auditor)", args[1])
			}
			user, err := app.apiClient().UpdateUserRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			return app.printJSON(cmd, user)
		},
	}
}
