package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
)

var ItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage items (files and folders)",
	Long:  "Provides commands to list, inspect, create, rename, delete and share OneDrive items (files and folders).",
}

func InitItemsCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(ItemsCmd)

	ItemsCmd.AddCommand(filesListCmd)
	ItemsCmd.AddCommand(filesStatCmd)
	ItemsCmd.AddCommand(filesMkdirCmd)
	ItemsCmd.AddCommand(filesRenameCmd)
	ItemsCmd.AddCommand(filesRmCmd)
	ItemsCmd.AddCommand(filesInviteCmd)
	ItemsCmd.AddCommand(filesPermissionsCmd)

	filesPermissionsCmd.AddCommand(filesPermissionsListCmd)
	filesPermissionsCmd.AddCommand(filesPermissionsDeleteCmd)

	filesInviteCmd.Flags().String("message", "", "Optional invitation message")
	filesInviteCmd.Flags().StringSlice("roles", []string{"read"}, "Roles to grant (read, write)")
	filesInviteCmd.Flags().Bool("require-signin", true, "Whether sign-in is required")
	filesInviteCmd.Flags().Bool("send-invitation", true, "Whether to send email invitation")

	ui.AddPagingFlags(filesListCmd)
	ui.AddPagingFlags(filesPermissionsListCmd)
}
