// Package ui formats drives, items, permissions and shares for the console
// and provides the progress spinner shown while pages are fetched.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

const (
	lineLength       = 100
	spinnerType      = 14
	spinnerThrottle  = 100 * time.Millisecond
	nameColumnLength = 50
)

// Success prints a simple success message to standard output.
func Success(msg string) {
	fmt.Println(msg)
}

// DisplayDriveItems prints a table of items with the default header.
func DisplayDriveItems(items []onedrive.DriveItem) {
	DisplayDriveItemsWithTitle(items, "Items found:")
}

// DisplayDriveItemsWithTitle prints a table of items under title.
func DisplayDriveItemsWithTitle(items []onedrive.DriveItem, title string) {
	if len(items) == 0 {
		fmt.Println("No items found in this location.")
		return
	}

	fmt.Println(title)
	fmt.Printf("%-50s %12s %-8s %s\n", "Name", "Size", "Type", "Last Modified")
	fmt.Println(strings.Repeat("-", 90))
	for _, item := range items {
		fmt.Printf("%-50.50s %12s %-8s %s\n", truncate(item.Name, nameColumnLength), formatBytes(item.Size), itemType(&item), formatShortTime(item.LastModifiedDateTime))
	}
}

// DisplayDrives prints a table of drives showing name, type and owner.
func DisplayDrives(drives []onedrive.Drive) {
	if len(drives) == 0 {
		fmt.Println("No drives found for this account.")
		return
	}

	fmt.Printf("%-35s %-20s %-20s %s\n", "Drive Name", "Drive Type", "Owner", "ID")
	fmt.Println(strings.Repeat("-", lineLength))
	for _, drive := range drives {
		fmt.Printf("%-35.35s %-20s %-20.20s %s\n", driveName(&drive), drive.DriveType, ownerName(drive.Owner), drive.ID)
	}
}

// DisplayDrive prints the metadata of a single drive.
func DisplayDrive(drive *onedrive.Drive) {
	fmt.Println("Drive Information:")
	fmt.Printf("  Name:   %s\n", driveName(drive))
	fmt.Printf("  ID:     %s\n", drive.ID)
	fmt.Printf("  Type:   %s\n", drive.DriveType)
	fmt.Printf("  Owner:  %s\n", ownerName(drive.Owner))
	if drive.WebURL != "" {
		fmt.Printf("  Web URL: %s\n", drive.WebURL)
	}
	if drive.Quota != nil {
		fmt.Printf("  Usage:  %s of %s\n", formatBytes(drive.Quota.Used), formatBytes(drive.Quota.Total))
	}
}

// DisplayQuota prints the storage quota of a drive.
func DisplayQuota(drive *onedrive.Drive) {
	if drive.Quota == nil {
		fmt.Println("The service did not report quota information for this drive.")
		return
	}
	fmt.Println("Drive Quota Information:")
	fmt.Printf("  Total Space: %s\n", formatBytes(drive.Quota.Total))
	fmt.Printf("  Used Space:  %s\n", formatBytes(drive.Quota.Used))
	fmt.Printf("  Free Space:  %s\n", formatBytes(drive.Quota.Remaining))
	fmt.Printf("  Deleted:     %s\n", formatBytes(drive.Quota.Deleted))
	fmt.Printf("  Quota State: %s\n", drive.Quota.State)
}

// DisplayUser prints information about the signed-in user.
func DisplayUser(user *onedrive.User) {
	fmt.Printf("Logged in as: %s (User Principal Name: %s, ID: %s)\n", user.DisplayName, user.UserPrincipalName, user.ID)
}

// DisplayDriveItem prints detailed metadata for a single item.
func DisplayDriveItem(item *onedrive.DriveItem) {
	fmt.Println("Item Metadata:")
	fmt.Printf("  Name:             %s\n", item.Name)
	fmt.Printf("  ID:               %s\n", item.ID)
	fmt.Printf("  Size:             %s (%d bytes)\n", formatBytes(item.Size), item.Size)
	fmt.Printf("  Created:          %s\n", formatLongTime(item.CreatedDateTime))
	fmt.Printf("  Last Modified:    %s\n", formatLongTime(item.LastModifiedDateTime))
	if name := item.LastModifiedBy.DisplayName(); name != "" {
		fmt.Printf("  Modified By:      %s\n", name)
	}
	if item.ParentReference != nil && item.ParentReference.Path != "" {
		fmt.Printf("  Parent:           %s\n", item.ParentReference.Path)
	}
	if item.WebURL != "" {
		fmt.Printf("  Web URL:          %s\n", item.WebURL)
	}

	switch {
	case item.Folder != nil:
		fmt.Printf("  Type:             Folder\n")
		fmt.Printf("  Child Count:      %d\n", item.Folder.ChildCount)
	case item.File != nil:
		fmt.Printf("  Type:             File\n")
		if item.File.MimeType != "" {
			fmt.Printf("  MIME Type:        %s\n", item.File.MimeType)
		}
		if item.File.Hashes != nil && item.File.Hashes.QuickXorHash != "" {
			fmt.Printf("  QuickXorHash:     %s\n", item.File.Hashes.QuickXorHash)
		}
	case item.RemoteItem != nil:
		fmt.Printf("  Type:             Remote %s\n", itemType(item))
	default:
		fmt.Printf("  Type:             Unknown/Other\n")
	}
	if item.SpecialFolder != nil {
		fmt.Printf("  Special Folder:   %s\n", item.SpecialFolder.Name)
	}
	if len(item.AdditionalData) > 0 {
		fmt.Printf("  Other Properties: %s\n", strings.Join(item.AdditionalData.Keys(), ", "))
	}
}

// DisplaySharedItems prints the items shared with the signed-in user.
func DisplaySharedItems(items []onedrive.DriveItem) {
	if len(items) == 0 {
		fmt.Println("No items have been shared with you.")
		return
	}

	fmt.Printf("Items shared with you (%d item(s)):\n", len(items))
	fmt.Printf("%-50.50s %12s %-10s %s\n", "Name", "Size", "Type", "Shared By")
	fmt.Println(strings.Repeat("-", lineLength))
	for _, item := range items {
		owner := ownerName(item.CreatedBy)
		size := item.Size
		if item.RemoteItem != nil && size == 0 {
			size = item.RemoteItem.Size
		}
		fmt.Printf("%-50.50s %12s %-10s %s\n", truncate(item.Name, nameColumnLength), formatBytes(size), itemType(&item), owner)
	}
}

// DisplayShare prints a share and, when expanded, its root item.
func DisplayShare(share *onedrive.Share) {
	fmt.Println("Share Information:")
	fmt.Printf("  ID:     %s\n", share.ID)
	if share.Name != "" {
		fmt.Printf("  Name:   %s\n", share.Name)
	}
	fmt.Printf("  Owner:  %s\n", ownerName(share.Owner))
	if share.Root != nil {
		DisplayDriveItem(share.Root)
	}
	if share.Items != nil {
		DisplayDriveItemsWithTitle(share.Items.Items, "Shared items:")
	}
}

// DisplayPermissions prints the permissions of the item at path.
func DisplayPermissions(permissions []onedrive.Permission, path string) {
	if len(permissions) == 0 {
		fmt.Printf("No permissions found for %s.\n", path)
		return
	}

	fmt.Printf("Permissions for %s (%d):\n", path, len(permissions))
	for i := range permissions {
		fmt.Println(strings.Repeat("-", 60))
		displayPermission(&permissions[i])
	}
}

func displayPermission(p *onedrive.Permission) {
	fmt.Printf("  ID:          %s\n", p.ID)
	fmt.Printf("  Roles:       %s\n", strings.Join(p.Roles, ", "))
	if name := p.GrantedTo.DisplayName(); name != "" {
		fmt.Printf("  Granted To:  %s\n", name)
	}
	if p.Link != nil {
		fmt.Printf("  Link Type:   %s\n", p.Link.Type)
		fmt.Printf("  Link Scope:  %s\n", p.Link.Scope)
		if p.Link.WebURL != "" {
			fmt.Printf("  Link URL:    %s\n", p.Link.WebURL)
		}
	}
	if p.Invitation != nil && p.Invitation.Email != "" {
		fmt.Printf("  Invited:     %s\n", p.Invitation.Email)
	}
	if p.InheritedFrom != nil && p.InheritedFrom.Path != "" {
		fmt.Printf("  Inherited:   %s\n", p.InheritedFrom.Path)
	}
}

// NewPageSpinner returns an indeterminate progress indicator that counts
// fetched pages on stderr.
func NewPageSpinner(description string) *progressbar.ProgressBar {
	if description == "" {
		description = "Fetching pages..."
	}
	return progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(spinnerThrottle),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(spinnerType),
		progressbar.OptionClearOnFinish(),
	)
}

// formatBytes converts a size in bytes to a human-readable string using IEC
// units (KiB, MiB, GiB, etc.).
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func formatShortTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatLongTime(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Local().Format(time.RFC1123)
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}

func itemType(item *onedrive.DriveItem) string {
	if item.IsFolder() {
		return "Folder"
	}
	return "File"
}

func driveName(drive *onedrive.Drive) string {
	if drive.Name == "" && drive.DriveType == "personal" {
		return "Personal OneDrive"
	}
	return drive.Name
}

func ownerName(owner *onedrive.IdentitySet) string {
	if name := owner.DisplayName(); name != "" {
		return name
	}
	return "N/A"
}
