package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"github.com/tonimelisma/onedrive-sdk-go/pkg/onedrive"
)

func newTestSDK(t *testing.T, handler http.HandlerFunc) *LiveSDK {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := onedrive.NewClientWithHTTPClient(server.Client(), onedrive.ClientOptions{BaseURL: server.URL})
	return NewLiveSDK(client, logger.NoopLogger{})
}

func TestListChildrenPaging(t *testing.T) {
	var calls int32
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/me/drive/root:/docs:/children", r.URL.Path)
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"value":[{"id":"c","name":"c.txt"}]}`)
			return
		}
		fmt.Fprintf(w, `{"value":[{"id":"a","name":"a.txt"},{"id":"b","name":"b"}],"@odata.nextLink":"http://%s/me/drive/root:/docs:/children?page=2"}`, r.Host)
	})

	t.Run("first page", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		items, next, err := sdk.ListChildren(context.Background(), "/docs", onedrive.Paging{})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Contains(t, next, "page=2")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("all pages", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		items, next, err := sdk.ListChildren(context.Background(), "/docs/", onedrive.Paging{FetchAll: true})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "c", items[2].ID)
		assert.Empty(t, next)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("invalid path", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		_, _, err := sdk.ListChildren(context.Background(), "docs", onedrive.Paging{})
		assert.ErrorIs(t, err, onedrive.ErrInvalidPath)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})
}

func TestCreateFolder(t *testing.T) {
	var gotBody map[string]any
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/drive/root:/docs:/children", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"new","name":"Reports","folder":{"childCount":0}}`)
	})

	item, err := sdk.CreateFolder(context.Background(), "/docs", "Reports")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "new", item.ID)
	assert.True(t, item.IsFolder())

	assert.Equal(t, "Reports", gotBody["name"])
	assert.Equal(t, map[string]any{}, gotBody["folder"])
	assert.Equal(t, "fail", gotBody["@microsoft.graph.conflictBehavior"])
}

func TestCreateFolderConflict(t *testing.T) {
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"error":{"code":"nameAlreadyExists","message":"exists"}}`)
	})

	_, err := sdk.CreateFolder(context.Background(), "/", "Reports")
	assert.ErrorIs(t, err, onedrive.ErrConflict)
}

func TestLocalValidationSkipsRequests(t *testing.T) {
	var calls int32
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"reserved folder name", func() error { _, err := sdk.CreateFolder(ctx, "/", "CON"); return err }},
		{"rename root", func() error { _, err := sdk.RenameItem(ctx, "/", "x"); return err }},
		{"rename to invalid name", func() error { _, err := sdk.RenameItem(ctx, "/a.txt", "a/b"); return err }},
		{"delete root", func() error { return sdk.DeleteItem(ctx, "/") }},
		{"traversal", func() error { _, err := sdk.GetItem(ctx, "/docs/../secret"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.call())
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls))

	_, err := sdk.Invite(ctx, "/a.txt", onedrive.InviteRequestBody{Roles: []string{"read"}})
	assert.ErrorIs(t, err, onedrive.ErrInvalidRequest)
}

func TestRenameAndDeleteItem(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fmt.Fprint(w, `{"id":"i1","name":"new.txt"}`)
	})
	ctx := context.Background()

	item, err := sdk.RenameItem(ctx, "/docs/old.txt", "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", item.Name)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/me/drive/root:/docs/old.txt:", gotPath)
	assert.JSONEq(t, `{"name":"new.txt"}`, gotBody)

	require.NoError(t, sdk.DeleteItem(ctx, "/docs/new.txt"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/me/drive/root:/docs/new.txt:", gotPath)
}

func TestListPermissionsNotFound(t *testing.T) {
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/drive/root:/missing:/permissions", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"itemNotFound","message":"not found"}}`)
	})

	permissions, next, err := sdk.ListPermissions(context.Background(), "/missing", onedrive.Paging{})
	assert.ErrorIs(t, err, onedrive.ErrResourceNotFound)
	assert.Nil(t, permissions)
	assert.Empty(t, next)
}

func TestDeletePermission(t *testing.T) {
	var gotPath string
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, sdk.DeletePermission(context.Background(), "/a.txt", "perm/1"))
	assert.Equal(t, "/me/drive/root:/a.txt:/permissions/perm%2F1", gotPath)
}

func TestInviteCollectsEveryPage(t *testing.T) {
	var gotBody onedrive.InviteRequestBody
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/me/drive/root:/a.txt:":
			fmt.Fprint(w, `{"id":"item-9","name":"a.txt"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/me/drive/items/item-9/invite":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			fmt.Fprintf(w, `{"value":[{"id":"p1","roles":["write"]}],"@odata.nextLink":"http://%s/me/drive/items/item-9/invite?page=2"}`, r.Host)
		case r.Method == http.MethodGet && r.URL.Query().Get("page") == "2":
			fmt.Fprint(w, `{"value":[{"id":"p2","roles":["write"]}]}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	body := onedrive.InviteRequestBody{
		Recipients:     []onedrive.DriveRecipient{{Email: "guest@example.com"}},
		Roles:          []string{"write"},
		RequireSignIn:  true,
		SendInvitation: true,
	}
	permissions, err := sdk.Invite(context.Background(), "/a.txt", body)
	require.NoError(t, err)
	require.Len(t, permissions, 2)
	assert.Equal(t, "p1", permissions[0].ID)
	assert.Equal(t, "p2", permissions[1].ID)
	assert.Equal(t, body, gotBody)
}

func TestGetShareExpandsRoot(t *testing.T) {
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shares/s!abc", r.URL.Path)
		assert.Equal(t, "root", r.URL.Query().Get("$expand"))
		fmt.Fprint(w, `{"id":"s!abc","name":"Team","root":{"id":"r","name":"Team","folder":{"childCount":2}}}`)
	})

	share, err := sdk.GetShare(context.Background(), "s!abc")
	require.NoError(t, err)
	require.NotNil(t, share.Root)
	assert.True(t, share.Root.IsFolder())
}

func TestDriveQueries(t *testing.T) {
	sdk := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			fmt.Fprint(w, `{"id":"u1","displayName":"Ada"}`)
		case "/me/drive":
			fmt.Fprint(w, `{"id":"d1","driveType":"personal","quota":{"total":100,"used":40}}`)
		case "/drives/d2":
			fmt.Fprint(w, `{"id":"d2","driveType":"business"}`)
		case "/me/drives":
			assert.Equal(t, "5", r.URL.Query().Get("$top"))
			fmt.Fprint(w, `{"value":[{"id":"d1"},{"id":"d2"}]}`)
		case "/me/drive/special":
			fmt.Fprint(w, `{"value":[{"id":"docs","specialFolder":{"name":"documents"}}]}`)
		case "/me/drive/sharedWithMe":
			fmt.Fprint(w, `{"value":[]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()

	user, err := sdk.GetMe(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.DisplayName)

	drive, err := sdk.GetDefaultDrive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), drive.Quota.Used)

	drive, err = sdk.GetDriveByID(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, "business", drive.DriveType)

	drives, _, err := sdk.ListDrives(ctx, onedrive.Paging{Top: 5})
	require.NoError(t, err)
	assert.Len(t, drives, 2)

	special, _, err := sdk.ListSpecialFolders(ctx, onedrive.Paging{})
	require.NoError(t, err)
	require.Len(t, special, 1)
	assert.Equal(t, "documents", special[0].SpecialFolder.Name)

	shared, next, err := sdk.ListSharedWithMe(ctx, onedrive.Paging{FetchAll: true})
	require.NoError(t, err)
	assert.Empty(t, shared)
	assert.Empty(t, next)
}
