package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

var filesInviteCmd = &cobra.Command{
	Use:   "invite <remote-path> <email> [email...]",
	Short: "Invite people to access an item",
	Long:  "Sends sharing invitations for a file or folder and lists the permissions that were created.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesInviteLogic(a, cmd, args)
	},
}

var filesPermissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Manage the sharing permissions of an item",
}

var filesPermissionsListCmd = &cobra.Command{
	Use:   "list <remote-path>",
	Short: "List the permissions of an item",
	Long:  "Lists sharing links, invitations and inherited permissions of a file or folder. Supports pagination flags.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesPermissionsListLogic(a, cmd, args)
	},
}

var filesPermissionsDeleteCmd = &cobra.Command{
	Use:   "delete <remote-path> <permission-id>",
	Short: "Remove a permission from an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(cmd)
		if err != nil {
			return err
		}
		return filesPermissionsDeleteLogic(a, cmd, args)
	},
}

func filesInviteLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	message, _ := cmd.Flags().GetString("message")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	requireSignIn, _ := cmd.Flags().GetBool("require-signin")
	sendInvitation, _ := cmd.Flags().GetBool("send-invitation")

	body := onedrive.InviteRequestBody{
		Message:        message,
		Roles:          roles,
		RequireSignIn:  requireSignIn,
		SendInvitation: sendInvitation,
	}
	for _, email := range args[1:] {
		body.Recipients = append(body.Recipients, onedrive.DriveRecipient{Email: email})
	}

	permissions, err := a.SDK.Invite(cmd.Context(), remotePath, body)
	if err != nil {
		return fmt.Errorf("inviting users: %w", err)
	}
	ui.Success(fmt.Sprintf("Sent %d invitation(s) for '%s'.", len(body.Recipients), remotePath))
	ui.DisplayPermissions(permissions, remotePath)
	return nil
}

func filesPermissionsListLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath := args[0]
	fetch := func(ctx context.Context, paging onedrive.Paging) ([]onedrive.Permission, string, error) {
		return a.SDK.ListPermissions(ctx, remotePath, paging)
	}
	return ui.RunPagedListing(cmd, a, listingKey("items permissions", remotePath), fetch, func(permissions []onedrive.Permission) {
		ui.DisplayPermissions(permissions, remotePath)
	})
}

func filesPermissionsDeleteLogic(a *app.App, cmd *cobra.Command, args []string) error {
	remotePath, permissionID := args[0], args[1]
	if permissionID == "" {
		return fmt.Errorf("permission ID cannot be empty")
	}

	if err := a.SDK.DeletePermission(cmd.Context(), remotePath, permissionID); err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	ui.Success(fmt.Sprintf("Permission '%s' removed from '%s'.", permissionID, remotePath))
	return nil
}
