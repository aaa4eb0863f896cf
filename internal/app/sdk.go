package app

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/internal/ui"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// SDK defines the operations the commands perform against OneDrive.
// This allows for mocking in tests.
type SDK interface {
	GetMe(ctx context.Context) (*onedrive.User, error)
	GetDefaultDrive(ctx context.Context) (*onedrive.Drive, error)
	GetDriveByID(ctx context.Context, driveID string) (*onedrive.Drive, error)
	ListDrives(ctx context.Context, paging onedrive.Paging) ([]onedrive.Drive, string, error)
	ListSpecialFolders(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	ListSharedWithMe(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	GetShare(ctx context.Context, shareID string) (*onedrive.Share, error)

	GetItem(ctx context.Context, path string) (*onedrive.DriveItem, error)
	ListChildren(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	CreateFolder(ctx context.Context, parentPath, name string) (*onedrive.DriveItem, error)
	RenameItem(ctx context.Context, path, newName string) (*onedrive.DriveItem, error)
	DeleteItem(ctx context.Context, path string) error

	ListPermissions(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.Permission, string, error)
	DeletePermission(ctx context.Context, path, permissionID string) error
	Invite(ctx context.Context, path string, body onedrive.InviteRequestBody) ([]onedrive.Permission, error)
}

// LiveSDK implements SDK with a onedrive.Client.
type LiveSDK struct {
	client *onedrive.Client
	log    logger.Logger

	// ShowProgress draws a spinner on stderr while every page is fetched.
	ShowProgress bool
}

func NewLiveSDK(client *onedrive.Client, log logger.Logger) *LiveSDK {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &LiveSDK{client: client, log: log}
}

func (s *LiveSDK) GetMe(ctx context.Context) (*onedrive.User, error) {
	return s.client.Me().Get(ctx)
}

func (s *LiveSDK) GetDefaultDrive(ctx context.Context) (*onedrive.Drive, error) {
	return s.client.Drive().Get(ctx)
}

func (s *LiveSDK) GetDriveByID(ctx context.Context, driveID string) (*onedrive.Drive, error) {
	return s.client.DriveByID(driveID).Get(ctx)
}

func (s *LiveSDK) ListDrives(ctx context.Context, paging onedrive.Paging) ([]onedrive.Drive, string, error) {
	return collect(ctx, s, "drives", s.client.Drives(), paging)
}

func (s *LiveSDK) ListSpecialFolders(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	return collect(ctx, s, "special folders", s.client.DriveSpecial(), paging)
}

func (s *LiveSDK) ListSharedWithMe(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	return collect(ctx, s, "shared items", s.client.DriveShared(), paging)
}

// GetShare fetches a share with its root item expanded.
func (s *LiveSDK) GetShare(ctx context.Context, shareID string) (*onedrive.Share, error) {
	return s.client.Share(shareID).Expand("root").Get(ctx)
}

func (s *LiveSDK) GetItem(ctx context.Context, path string) (*onedrive.DriveItem, error) {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return nil, err
	}
	return s.client.ItemByPath(path).Get(ctx)
}

func (s *LiveSDK) ListChildren(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return nil, "", err
	}
	req := onedrive.NewCollectionRequest[onedrive.DriveItem](s.client, s.client.BuildPathURL(path)+"/children")
	return collect(ctx, s, "children of "+path, req, paging)
}

// CreateFolder creates name below parentPath. It fails with
// onedrive.ErrConflict when an item of that name exists.
func (s *LiveSDK) CreateFolder(ctx context.Context, parentPath, name string) (*onedrive.DriveItem, error) {
	parentPath, err := onedrive.CleanRemotePath(parentPath)
	if err != nil {
		return nil, err
	}
	if err := onedrive.ValidateFileName(name); err != nil {
		return nil, err
	}

	folder := &onedrive.DriveItem{Name: name, Folder: &onedrive.FolderFacet{}, AdditionalData: onedrive.AdditionalData{}}
	if err := folder.AdditionalData.Set("@microsoft.graph.conflictBehavior", "fail"); err != nil {
		return nil, err
	}

	req := onedrive.NewCollectionRequest[onedrive.DriveItem](s.client, s.client.BuildPathURL(parentPath)+"/children")
	return req.Add(ctx, folder)
}

func (s *LiveSDK) RenameItem(ctx context.Context, path, newName string) (*onedrive.DriveItem, error) {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return nil, err
	}
	if path == "/" {
		return nil, fmt.Errorf("%w: the root folder cannot be renamed", onedrive.ErrInvalidPath)
	}
	if err := onedrive.ValidateFileName(newName); err != nil {
		return nil, err
	}
	return s.client.ItemByPath(path).Update(ctx, &onedrive.DriveItem{Name: newName})
}

func (s *LiveSDK) DeleteItem(ctx context.Context, path string) error {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return err
	}
	if path == "/" {
		return fmt.Errorf("%w: the root folder cannot be deleted", onedrive.ErrInvalidPath)
	}
	return s.client.ItemByPath(path).Delete(ctx)
}

func (s *LiveSDK) ListPermissions(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.Permission, string, error) {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return nil, "", err
	}
	req := onedrive.NewCollectionRequest[onedrive.Permission](s.client, s.client.BuildPathURL(path)+"/permissions")
	return collect(ctx, s, "permissions of "+path, req, paging)
}

func (s *LiveSDK) DeletePermission(ctx context.Context, path, permissionID string) error {
	path, err := onedrive.CleanRemotePath(path)
	if err != nil {
		return err
	}
	return onedrive.NewEntityRequest[onedrive.Permission](s.client, s.client.BuildPathURL(path)+"/permissions/"+url.PathEscape(permissionID)).Delete(ctx)
}

// Invite sends sharing invitations for the item at path and returns every
// permission the service created.
func (s *LiveSDK) Invite(ctx context.Context, path string, body onedrive.InviteRequestBody) ([]onedrive.Permission, error) {
	if len(body.Recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", onedrive.ErrInvalidRequest)
	}
	item, err := s.GetItem(ctx, path)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s", onedrive.ErrResourceNotFound, path)
	}

	var permissions []onedrive.Permission
	page, err := s.client.Invite(item.ID, body).Post(ctx)
	for ; page != nil && err == nil; page, err = page.GetNextPage(ctx) {
		permissions = append(permissions, page.Items...)
	}
	if err != nil {
		return nil, err
	}
	return permissions, nil
}

func collect[T any](ctx context.Context, s *LiveSDK, what string, req *onedrive.CollectionRequest[T], paging onedrive.Paging) ([]T, string, error) {
	var onPage func(*onedrive.CollectionPage[T])
	if s.ShowProgress && paging.FetchAll {
		bar := ui.NewPageSpinner("Fetching " + what)
		defer bar.Finish()
		onPage = func(*onedrive.CollectionPage[T]) { _ = bar.Add(1) }
	}

	items, next, err := onedrive.CollectAll(ctx, req, paging, onPage)
	if err != nil {
		return nil, "", err
	}
	s.log.Debug("listing collected", "what", what, "count", len(items), "more", next != "")
	return items, next, nil
}
