package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dianegit/develops-task-management/internal/api"
	"github.com/dianegit/develops-task-management/internal/credstore"
	"github.com/dianegit/develops-task-management/internal/session"
	"github.com/dianegit/develops-task-management/internal/store"
	"github.com/dianegit/develops-task-management/internal/tui"
)

type App struct {
	Server     string
	PrettyJSON bool

	cfg *store.Config
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "devtasks",
		Short:        "Terminal client for the task-management service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("DEVTASKS_SERVER", ""), "Base URL of the task service (default: config file, then http://localhost:8000)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newAdminCmd(app))

	return cmd
}

func (a *App) config() *store.Config {
	if a.cfg == nil {
		cfg, err := store.LoadConfig()
		if err != nil {
			cfg = &store.Config{}
		}
		a.cfg = cfg
	}
	return a.cfg
}

func (a *App) serverURL() string {
	return a.config().ResolvedServerURL(a.Server)
}

func (a *App) credStore() credstore.Store {
	return credstore.Store{}
}

func (a *App) apiClient() *api.Client {
	return api.NewClient(a.serverURL(), a.credStore())
}

func (a *App) sessionManager() *session.Manager {
	return session.NewManager(a.apiClient(), a.credStore())
}

func runTUI(app *App) error {
	return tui.Run(tui.Deps{
		Client:   app.apiClient(),
		Sessions: app.sessionManager(),
		Config:   app.config(),
	})
}
