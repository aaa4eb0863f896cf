package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Access items through sharing links",
}

var sharesGetCmd = &cobra.Command{
	Use:   "get <share-id-or-url>",
	Short: "Show a share and its root item",
	Long:  `Resolves a share ID or a sharing link and shows the shared item. Sharing links are encoded into share IDs automatically.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return sharesGetLogic(a, cmd, args)
	},
}

// shareIDFromArg returns arg unchanged unless it is a sharing link.
func shareIDFromArg(arg string) string {
	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		return onedrive.EncodeSharingURL(arg)
	}
	return arg
}

func sharesGetLogic(a *app.App, cmd *cobra.Command, args []string) error {
	shareID := shareIDFromArg(args[0])
	if shareID == "" {
		return fmt.Errorf("share ID cannot be empty")
	}

	share, err := a.SDK.GetShare(cmd.Context(), shareID)
	if err != nil {
		return fmt.Errorf("getting share: %w", err)
	}
	ui.DisplayShare(share)
	return nil
}

func init() {
	rootCmd.AddCommand(sharesCmd)
	sharesCmd.AddCommand(sharesGetCmd)
}
