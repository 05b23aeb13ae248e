package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigilo-home/vigilo/cli/pkg/output"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Log in to the alarm service and manage the stored session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the alarm service",
	Long:  "Authenticate with username and password and save the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		app, err := newApp()
		if err != nil {
			return err
		}

		result, err := app.auth.Login(cmd.Context(), username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		output.Success("Logged in as %s", username)
		if result.NeedDeviceAuthorization {
			output.Warn("This device still needs authorization; check the Securitas Direct app")
		}
		if result.ChangePassword {
			output.Warn("The service is asking for a password change")
		}
		output.Info("Session saved to %s", app.files.Dir())
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Long:  "Remove the stored session and credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		app.auth.Logout()
		output.Success("Logged out")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		token, data, err := app.sessions.Current()
		if err != nil {
			output.Warn("Not logged in (or session expired); run 'vigilo auth login'")
			return nil
		}

		if outputFormat(cmd) == "json" {
			return output.JSON(map[string]any{
				"user":       data.User,
				"lang":       data.Lang,
				"country":    data.Country,
				"login_time": data.LoginTime,
			})
		}

		output.Success("Logged in as %s", data.User)
		output.Info("Session started: %s", data.LoginTime.Format("2006-01-02 15:04:05"))
		output.Info("Token: %s...", token[:min(8, len(token))])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().StringP("username", "u", "", "Username (DNI/NIE)")
	authLoginCmd.Flags().StringP("password", "p", "", "Password")
	authLoginCmd.MarkFlagRequired("username")
	authLoginCmd.MarkFlagRequired("password")
}
