package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/onedrive-sdk-go/internal/app"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/internal/session"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

// MockSDK implements app.SDK with overridable functions. Unset functions
// return empty results.
type MockSDK struct {
	GetMeFunc              func(ctx context.Context) (*onedrive.User, error)
	GetDefaultDriveFunc    func(ctx context.Context) (*onedrive.Drive, error)
	GetDriveByIDFunc       func(ctx context.Context, driveID string) (*onedrive.Drive, error)
	ListDrivesFunc         func(ctx context.Context, paging onedrive.Paging) ([]onedrive.Drive, string, error)
	ListSpecialFoldersFunc func(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	ListSharedWithMeFunc   func(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	GetShareFunc           func(ctx context.Context, shareID string) (*onedrive.Share, error)
	GetItemFunc            func(ctx context.Context, path string) (*onedrive.DriveItem, error)
	ListChildrenFunc       func(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.DriveItem, string, error)
	CreateFolderFunc       func(ctx context.Context, parentPath, name string) (*onedrive.DriveItem, error)
	RenameItemFunc         func(ctx context.Context, path, newName string) (*onedrive.DriveItem, error)
	DeleteItemFunc         func(ctx context.Context, path string) error
	ListPermissionsFunc    func(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.Permission, string, error)
	DeletePermissionFunc   func(ctx context.Context, path, permissionID string) error
	InviteFunc             func(ctx context.Context, path string, body onedrive.InviteRequestBody) ([]onedrive.Permission, error)
}

var _ app.SDK = (*MockSDK)(nil)

func (m *MockSDK) GetMe(ctx context.Context) (*onedrive.User, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx)
	}
	return &onedrive.User{}, nil
}

func (m *MockSDK) GetDefaultDrive(ctx context.Context) (*onedrive.Drive, error) {
	if m.GetDefaultDriveFunc != nil {
		return m.GetDefaultDriveFunc(ctx)
	}
	return &onedrive.Drive{}, nil
}

func (m *MockSDK) GetDriveByID(ctx context.Context, driveID string) (*onedrive.Drive, error) {
	if m.GetDriveByIDFunc != nil {
		return m.GetDriveByIDFunc(ctx, driveID)
	}
	return &onedrive.Drive{ID: driveID}, nil
}

func (m *MockSDK) ListDrives(ctx context.Context, paging onedrive.Paging) ([]onedrive.Drive, string, error) {
	if m.ListDrivesFunc != nil {
		return m.ListDrivesFunc(ctx, paging)
	}
	return nil, "", nil
}

func (m *MockSDK) ListSpecialFolders(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	if m.ListSpecialFoldersFunc != nil {
		return m.ListSpecialFoldersFunc(ctx, paging)
	}
	return nil, "", nil
}

func (m *MockSDK) ListSharedWithMe(ctx context.Context, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	if m.ListSharedWithMeFunc != nil {
		return m.ListSharedWithMeFunc(ctx, paging)
	}
	return nil, "", nil
}

func (m *MockSDK) GetShare(ctx context.Context, shareID string) (*onedrive.Share, error) {
	if m.GetShareFunc != nil {
		return m.GetShareFunc(ctx, shareID)
	}
	return &onedrive.Share{ID: shareID}, nil
}

func (m *MockSDK) GetItem(ctx context.Context, path string) (*onedrive.DriveItem, error) {
	if m.GetItemFunc != nil {
		return m.GetItemFunc(ctx, path)
	}
	return &onedrive.DriveItem{}, nil
}

func (m *MockSDK) ListChildren(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.DriveItem, string, error) {
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(ctx, path, paging)
	}
	return nil, "", nil
}

func (m *MockSDK) CreateFolder(ctx context.Context, parentPath, name string) (*onedrive.DriveItem, error) {
	if m.CreateFolderFunc != nil {
		return m.CreateFolderFunc(ctx, parentPath, name)
	}
	return &onedrive.DriveItem{Name: name}, nil
}

func (m *MockSDK) RenameItem(ctx context.Context, path, newName string) (*onedrive.DriveItem, error) {
	if m.RenameItemFunc != nil {
		return m.RenameItemFunc(ctx, path, newName)
	}
	return &onedrive.DriveItem{Name: newName}, nil
}

func (m *MockSDK) DeleteItem(ctx context.Context, path string) error {
	if m.DeleteItemFunc != nil {
		return m.DeleteItemFunc(ctx, path)
	}
	return nil
}

func (m *MockSDK) ListPermissions(ctx context.Context, path string, paging onedrive.Paging) ([]onedrive.Permission, string, error) {
	if m.ListPermissionsFunc != nil {
		return m.ListPermissionsFunc(ctx, path, paging)
	}
	return nil, "", nil
}

func (m *MockSDK) DeletePermission(ctx context.Context, path, permissionID string) error {
	if m.DeletePermissionFunc != nil {
		return m.DeletePermissionFunc(ctx, path, permissionID)
	}
	return nil
}

func (m *MockSDK) Invite(ctx context.Context, path string, body onedrive.InviteRequestBody) ([]onedrive.Permission, error) {
	if m.InviteFunc != nil {
		return m.InviteFunc(ctx, path, body)
	}
	return nil, nil
}

// newTestApp returns an app backed by sdk with session state in a temporary
// directory.
func newTestApp(t *testing.T, sdk app.SDK) *app.App {
	t.Helper()
	return &app.App{
		Logger:  logger.NoopLogger{},
		Session: session.NewManagerWithConfigDir(t.TempDir()),
		SDK:     sdk,
	}
}

// newTestCommand returns a command carrying a context, with args parsed as
// flags after setup registered them.
func newTestCommand(t *testing.T, setup func(*cobra.Command), args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	if setup != nil {
		setup(cmd)
	}
	require.NoError(t, cmd.ParseFlags(args))
	cmd.SetContext(context.Background())
	return cmd
}

// captureOutput returns what fn writes to stdout.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()
	w.Close()
	os.Stdout = oldStdout
	return <-done
}
