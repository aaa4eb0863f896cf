package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var filesListCmd = &cobra.Command{
	Use:   "ls [remote-path]",
	Short: "List the items in a folder",
	Long:  "Lists the files and folders in a OneDrive folder, the root folder by default. Supports pagination flags.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesListLogic(a, cmd, args)
	},
}

var filesStatCmd = &cobra.Command{
	Use:   "stat <remote-path>",
	Short: "Show metadata of a file or folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesStatLogic(a, cmd, args)
	},
}

func filesListLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath := "/"
	if len(args) > 0 && args[0] != "" {
		remotePath = args[0]
	}

	fetch := func(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
		return a.SDK.ListChildren(ctx, remotePath, paging)
	}
	return ui.RunPagedListing(cmd, a, listingKey("items ls", remotePath), fetch, func(items []onedrive.DriveItem) {
		ui.DisplayDriveItemsWithTitle(items, fmt.Sprintf("Items in %s:", remotePath))
	})
}

func filesStatLogic(a *app.App, cmd *cobra.Command, args []string) error {
	item, err := a.SDK.GetItem(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting item metadata: %w", err)
	}
	if item == nil {
		return fmt.Errorf("%w: %s", onedrive.ErrResourceNotFound, args[0])
	}
	ui.DisplayDriveItem(item)
	return nil
}
