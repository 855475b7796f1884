package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/crucial707/reporthub/cmd/cli/client"
	"github.com/crucial707/reporthub/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd())
}

// loginCmd logs in and stores the JWT for later commands.
func loginCmd() *cobra.Command {
	var username, password string
	var register bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the reporthub API",
		Long: `Authenticate with the reporthub API and store a JWT for later commands.
The password may also be given in REPORTHUB_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("username is required")
			}
			if password == "" {
				password = os.Getenv("REPORTHUB_PASSWORD")
			}
			creds := map[string]string{"username": username, "password": password}

			if register {
				if err := client.Do(http.MethodPost, "/auth/register", false, creds, nil); err != nil {
					return fmt.Errorf("register: %w", err)
				}
			}

			var out struct {
				Token     string    `json:"token"`
				ExpiresAt time.Time `json:"expires_at"`
			}
			if err := client.Do(http.MethodPost, "/auth/login", false, creds, &out); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if out.Token == "" {
				return errors.New("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (token valid until %s).\n", username, out.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to authenticate as")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&register, "register", false, "Register the user before logging in")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
