// Package cmd defines the root command of the onedrive CLI, its global flags
// and the drive, share and auth command groups.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	cmdItems "github.com/tonimelisma/onedrive-sdk-go/cmd/items"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var rootCmd = &cobra.Command{
	Use:   "onedrive",
	Short: "A CLI client for Microsoft OneDrive",
	Long: `onedrive is a command-line tool for Microsoft OneDrive built on the
onedrive SDK.

Listings page through the service the way the Graph API returns them. Use
--top to choose a page size, --all to fetch every page, and --next or
--resume to continue a listing where it stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Interrupts cancel the running request.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage turns sign-in related errors into instructions.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrLoginPending):
		return err.Error()
	case errors.Is(err, onedrive.ErrReauthRequired):
		return "You are not logged in. Please run 'onedrive auth login'."
	case errors.Is(err, onedrive.ErrCancelled):
		return "Cancelled."
	}
	return "Error: " + err.Error()
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging for SDK and internal operations")
	rootCmd.PersistentFlags().String("log-format", "", fmt.Sprintf("Log output format, %q or %q", logger.FormatText, logger.FormatJSON))

	cmdItems.InitItemsCommands(rootCmd)
}
