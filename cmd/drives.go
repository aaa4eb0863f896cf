package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// Listing keys under which --resume finds the saved next link.
const (
	listingDrives  = "drives list"
	listingSpecial = "drives special"
	listingShared  = "drives shared"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "Manage and inspect OneDrive drives",
	Long:  `Provides commands to list available drives, check quota, and browse the special folders and items shared with you.`,
}

var drivesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available OneDrive drives",
	Long:  `Lists the drives the signed-in user can access. Supports pagination flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return drivesListLogic(a, cmd)
	},
}

var drivesQuotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Get storage quota for the default drive",
	Long:  `Displays the total, used, and remaining storage quota of the default drive.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return drivesQuotaLogic(a, cmd)
	},
}

var drivesGetCmd = &cobra.Command{
	Use:   "get [drive-id]",
	Short: "Get metadata for a drive",
	Long:  `Retrieves metadata for the drive with the given ID, or for the default drive when no ID is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return drivesGetLogic(a, cmd, args)
	},
}

var drivesSpecialCmd = &cobra.Command{
	Use:   "special",
	Short: "List the special folders of the default drive",
	Long:  `Lists well-known folders such as Documents, Photos and the App Root. Supports pagination flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return drivesSpecialLogic(a, cmd)
	},
}

var drivesSharedCmd = &cobra.Command{
	Use:   "shared",
	Short: "List items shared with you",
	Long:  `Lists files and folders that other users have shared with you. Supports pagination flags.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return drivesSharedLogic(a, cmd)
	},
}

func drivesListLogic(a *app.App, cmd *cobra.Command) error {
	return ui.RunPagedListing(cmd, a, listingDrives, a.SDK.ListDrives, ui.DisplayDrives)
}

func drivesQuotaLogic(a *app.App, cmd *cobra.Command) error {
	drive, err := a.SDK.GetDefaultDrive(cmd.Context())
	if err != nil {
		return fmt.Errorf("getting drive quota: %w", err)
	}
	ui.DisplayQuota(drive)
	return nil
}

func drivesGetLogic(a *app.App, cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		drive, err := a.SDK.GetDefaultDrive(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting default drive: %w", err)
		}
		ui.DisplayDrive(drive)
		return nil
	}

	drive, err := a.SDK.GetDriveByID(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting drive %s: %w", args[0], err)
	}
	ui.DisplayDrive(drive)
	return nil
}

func drivesSpecialLogic(a *app.App, cmd *cobra.Command) error {
	return ui.RunPagedListing(cmd, a, listingSpecial, a.SDK.ListSpecialFolders, func(items []onedrive.DriveItem) {
		ui.DisplayDriveItemsWithTitle(items, "Special folders:")
	})
}

func drivesSharedLogic(a *app.App, cmd *cobra.Command) error {
	return ui.RunPagedListing(cmd, a, listingShared, a.SDK.ListSharedWithMe, ui.DisplaySharedItems)
}

func init() {
	rootCmd.AddCommand(drivesCmd)
	drivesCmd.AddCommand(drivesListCmd)
	drivesCmd.AddCommand(drivesQuotaCmd)
	drivesCmd.AddCommand(drivesGetCmd)
	drivesCmd.AddCommand(drivesSpecialCmd)
	drivesCmd.AddCommand(drivesSharedCmd)

	ui.AddPagingFlags(drivesListCmd)
	ui.AddPagingFlags(drivesSpecialCmd)
	ui.AddPagingFlags(drivesSharedCmd)
}
