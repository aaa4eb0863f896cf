package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with Microsoft OneDrive",
	Long:  `Provides subcommands to sign in with the device code flow, sign out, and check authentication status.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Microsoft OneDrive using Device Code Flow",
	Long: `Starts the authentication process with Microsoft OneDrive.
You will be prompted to visit a URL in a web browser and enter a code to
authorize this application.

Without --wait the command returns immediately and the next command you run
finishes the sign-in. With --wait it polls until you have entered the code.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewUnauthenticatedApp(cmd)
		if err != nil {
			return err
		}
		return authLoginLogic(a, cmd)
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the current user session and log out",
	Long:  `Removes the stored token and any pending sign-in. Afterwards you need to run 'auth login' again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewUnauthenticatedApp(cmd)
		if err != nil {
			return err
		}
		return authLogoutLogic(a)
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the current authentication status",
	Long:  `Checks whether you are logged in and shows who you are. A pending sign-in is completed if you have entered the code.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return authStatusError(err)
		}
		return authStatusLogic(a, cmd)
	},
}

func authLoginLogic(a *app.App, cmd *cobra.Command) error {
	if a.Config.HasToken() {
		fmt.Println("You are already logged in. To switch accounts, run 'onedrive auth logout' first.")
		return nil
	}

	state, err := a.BeginLogin(cmd.Context())
	if err != nil {
		return fmt.Errorf("login initiation failed: %w", err)
	}

	fmt.Printf("To complete authentication, open a web browser and go to:\n%s\n", state.VerificationURI)
	fmt.Printf("Then enter the code: %s\n\n", state.UserCode)
	if !state.ExpiresAt.IsZero() {
		fmt.Printf("The code expires at %s.\n", state.ExpiresAt.Local().Format(time.Kitchen))
	}

	if wait, _ := cmd.Flags().GetBool("wait"); !wait {
		fmt.Println("Run any command once you have signed in to finish logging in.")
		return nil
	}

	fmt.Println("Waiting for you to sign in...")
	if err := a.WaitForLogin(cmd.Context()); err != nil {
		return err
	}
	ui.Success("Login successful.")
	return nil
}

func authLogoutLogic(a *app.App) error {
	if err := a.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	ui.Success("You have been logged out.")
	return nil
}

// authStatusError reports the sign-in states NewApp fails with as status
// output rather than errors.
func authStatusError(err error) error {
	switch {
	case errors.Is(err, app.ErrLoginPending):
		fmt.Println(err.Error())
		return nil
	case errors.Is(err, onedrive.ErrReauthRequired):
		fmt.Println("You are not logged in. Please run 'onedrive auth login'.")
		return nil
	}
	return fmt.Errorf("checking authentication status: %w", err)
}

func authStatusLogic(a *app.App, cmd *cobra.Command) error {
	user, err := a.SDK.GetMe(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not retrieve user information: %w", err)
	}
	ui.DisplayUser(user)
	return nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().Bool("wait", false, "Wait until the sign-in has been completed in the browser")
}
