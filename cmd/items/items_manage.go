package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
)

var filesMkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-path>",
	Short: "Create a folder",
	Long:  "Creates a folder at the given path. The parent folder must exist and the name must not be taken.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesMkdirLogic(a, cmd, args)
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <remote-path>",
	Short: "Delete a file or folder",
	Long:  "Deletes a file or folder from your OneDrive. Items are moved to the recycle bin, not permanently deleted.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesRmLogic(a, cmd, args)
	},
}

var filesRenameCmd = &cobra.Command{
	Use:   "rename <remote-path> <new-name>",
	Short: "Rename a file or folder",
	Long:  "Renames a file or folder in place.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesRenameLogic(a, cmd, args)
	},
}

func filesMkdirLogic(a *app.App, cmd *cobra.Command, args []string) error {
	if args[0] == "" {
		return fmt.Errorf("remote path cannot be empty")
	}
	parent, name := splitRemotePath(args[0])

	item, err := a.SDK.CreateFolder(cmd.Context(), parent, name)
	if err != nil {
		return fmt.Errorf("creating folder: %w", err)
	}
	created := name
	if item != nil && item.Name != "" {
		created = item.Name
	}
	ui.Success(fmt.Sprintf("Folder '%s' created successfully.", joinRemotePath(parent, created)))
	return nil
}

func filesRmLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	if remotePath == "" {
		return fmt.Errorf("remote path cannot be empty")
	}

	if err := a.SDK.DeleteItem(cmd.Context(), remotePath); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Item '%s' deleted successfully (moved to recycle bin).", remotePath))
	return nil
}

func filesRenameLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath, newName := args[0], args[1]
	if remotePath == "" || newName == "" {
		return fmt.Errorf("remote path and new name cannot be empty")
	}

	item, err := a.SDK.RenameItem(cmd.Context(), remotePath, newName)
	if err != nil {
		return fmt.Errorf("renaming item: %w", err)
	}
	if item != nil && item.Name != "" {
		newName = item.Name
	}
	parent, _ := splitRemotePath(remotePath)
	ui.Success(fmt.Sprintf("Item renamed to '%s'.", joinRemotePath(parent, newName)))
	return nil
}
