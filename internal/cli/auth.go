package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func promptLine(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(cmd, label)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ", label)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptLine(cmd, "Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd, "Password"); err != nil {
					return err
				}
			}
			mgr := app.sessionManager()
			if err := mgr.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			s := mgr.Snapshot()
			if s.User == nil {
				return fmt.Errorf("login succeeded but the profile could not be fetched; try again")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", s.User.FullName, s.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", envOr("DEVTASKS_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Nothing stored means nothing to revoke; skip the network call.
			if !app.credStore().Present(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			// Local logout must succeed even when the revoke call fails.
			if err := app.sessionManager().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	var email, fullName, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = promptLine(cmd, "Email"); err != nil {
					return err
				}
			}
			if fullName == "" {
				if fullName, err = promptLine(cmd, "Full name"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd, "Password"); err != nil {
					return err
				}
			}
			profile, err := app.sessionManager().Register(cmd.Context(), email, fullName, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s; run `devtasks login` to sign in\n", profile.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := app.sessionManager()
			if err := mgr.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			s := mgr.Snapshot()
			if s.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			return app.printJSON(cmd, s.User)
		},
	}
}
