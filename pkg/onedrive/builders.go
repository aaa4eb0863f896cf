package onedrive

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) resourceURL(segments ...string) string {
	return c.baseURL + "/" + strings.Join(segments, "/")
}

func (c *Client) driveURL(segments ...string) string {
	return c.resourceURL(append([]string{c.drivePath}, segments...)...)
}

// BuildPathURL constructs the full API URL for a path in the default drive.
func (c *Client) BuildPathURL(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return c.driveURL("root")
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.driveURL("root:") + "/" + strings.Join(segments, "/") + ":"
}

// Me addresses the signed-in user.
func (c *Client) Me() *EntityRequest[User] {
	return NewEntityRequest[User](c, c.resourceURL("me"))
}

// Drive addresses the default drive.
func (c *Client) Drive() *EntityRequest[Drive] {
	return NewEntityRequest[Drive](c, c.driveURL())
}

// Drives addresses the drives available to the signed-in user.
func (c *Client) Drives() *CollectionRequest[Drive] {
	return NewCollectionRequest[Drive](c, c.resourceURL(strings.TrimSuffix(c.drivePath, "drive")+"drives"))
}

// DriveByID addresses a drive by its ID.
func (c *Client) DriveByID(driveID string) *EntityRequest[Drive] {
	return NewEntityRequest[Drive](c, c.resourceURL("drives", url.PathEscape(driveID)))
}

// DriveItems addresses the items collection of a drive.
func (c *Client) DriveItems(driveID string) *CollectionRequest[DriveItem] {
	return NewCollectionRequest[DriveItem](c, c.resourceURL("drives", url.PathEscape(driveID), "items"))
}

// DriveSpecial addresses the special folders of the default drive.
func (c *Client) DriveSpecial() *CollectionRequest[DriveItem] {
	return NewCollectionRequest[DriveItem](c, c.driveURL("special"))
}

// DriveShared addresses the items shared with the signed-in user.
func (c *Client) DriveShared() *CollectionRequest[DriveItem] {
	return NewCollectionRequest[DriveItem](c, c.driveURL("sharedWithMe"))
}

// Item addresses an item of the default drive by ID.
func (c *Client) Item(itemID string) *EntityRequest[DriveItem] {
	return NewEntityRequest[DriveItem](c, c.driveURL("items", url.PathEscape(itemID)))
}

// ItemByPath addresses an item of the default drive by path. "" and "/"
// address the root folder.
func (c *Client) ItemByPath(path string) *EntityRequest[DriveItem] {
	return NewEntityRequest[DriveItem](c, c.BuildPathURL(path))
}

// ItemChildren addresses the children of a folder.
func (c *Client) ItemChildren(itemID string) *CollectionRequest[DriveItem] {
	return NewCollectionRequest[DriveItem](c, c.driveURL("items", url.PathEscape(itemID), "children"))
}

// ItemPermissions addresses the permissions of an item.
func (c *Client) ItemPermissions(itemID string) *CollectionRequest[Permission] {
	return NewCollectionRequest[Permission](c, c.driveURL("items", url.PathEscape(itemID), "permissions"))
}

// Permission addresses a single permission of an item.
func (c *Client) Permission(itemID, permissionID string) *EntityRequest[Permission] {
	return NewEntityRequest[Permission](c, c.driveURL("items", url.PathEscape(itemID), "permissions", url.PathEscape(permissionID)))
}

// Shares addresses the shares collection.
func (c *Client) Shares() *CollectionRequest[Share] {
	return NewCollectionRequest[Share](c, c.resourceURL("shares"))
}

// Share addresses a share by share ID or encoded sharing URL.
func (c *Client) Share(shareID string) *EntityRequest[Share] {
	return NewEntityRequest[Share](c, c.resourceURL("shares", url.PathEscape(shareID)))
}

// EncodeSharingURL turns a sharing link into a share ID accepted by Share:
// "u!" followed by the unpadded base64url form of the link.
func EncodeSharingURL(sharingURL string) string {
	return "u!" + base64.RawURLEncoding.EncodeToString([]byte(sharingURL))
}

// Invite prepares an invite action on an item.
func (c *Client) Invite(itemID string, body InviteRequestBody) *ItemInviteRequest {
	return &ItemInviteRequest{
		baseRequest: newBaseRequest(c, c.driveURL("items", url.PathEscape(itemID), "invite"), nil),
		body:        body,
	}
}

// ItemInviteRequest sends sharing invitations for an item. The permissions it
// returns form a collection that may continue on further pages.
type ItemInviteRequest struct {
	baseRequest
	body InviteRequestBody
}

// Post sends the invitations and returns the first page of created
// permissions, or (nil, nil) when the response carries no collection.
func (r *ItemInviteRequest) Post(ctx context.Context) (*CollectionPage[Permission], error) {
	return fetchPage[Permission](ctx, r.baseRequest, http.MethodPost, r.body)
}

func (r *ItemInviteRequest) Expand(value string) *ItemInviteRequest {
	return &ItemInviteRequest{baseRequest: r.with(QueryOption{Name: QueryExpand, Value: value}), body: r.body}
}

func (r *ItemInviteRequest) Select(value string) *ItemInviteRequest {
	return &ItemInviteRequest{baseRequest: r.with(QueryOption{Name: QuerySelect, Value: value}), body: r.body}
}
