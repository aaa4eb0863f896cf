package onedrive

import "time"

// Identity is an actor: a user, device or application.
type Identity struct {
	DisplayName string `json:"displayName,omitempty"`
	ID          string `json:"id,omitempty"`
}

// IdentitySet groups the identities involved in an action.
type IdentitySet struct {
	Application *Identity `json:"application,omitempty"`
	Device      *Identity `json:"device,omitempty"`
	User        *Identity `json:"user,omitempty"`
}

// DisplayName returns the first non-empty display name, user first.
func (s *IdentitySet) DisplayName() string {
	if s == nil {
		return ""
	}
	for _, id := range []*Identity{s.User, s.Application, s.Device} {
		if id != nil && id.DisplayName != "" {
			return id.DisplayName
		}
	}
	return ""
}

// Quota describes the storage space of a drive, in bytes.
type Quota struct {
	Deleted   int64  `json:"deleted,omitempty"`
	Remaining int64  `json:"remaining,omitempty"`
	State     string `json:"state,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Used      int64  `json:"used,omitempty"`
}

// ItemReference points to an item by drive and ID or path.
type ItemReference struct {
	DriveID   string `json:"driveId,omitempty"`
	DriveType string `json:"driveType,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Path      string `json:"path,omitempty"`
	ShareID   string `json:"shareId,omitempty"`
}

// FileSystemInfo holds timestamps reported by the client that uploaded the item.
type FileSystemInfo struct {
	CreatedDateTime      *time.Time `json:"createdDateTime,omitempty"`
	LastModifiedDateTime *time.Time `json:"lastModifiedDateTime,omitempty"`
}

// Hashes holds content hashes of a file.
type Hashes struct {
	CRC32Hash    string `json:"crc32Hash,omitempty"`
	SHA1Hash     string `json:"sha1Hash,omitempty"`
	QuickXorHash string `json:"quickXorHash,omitempty"`
}

// FileFacet is present on items that are files.
type FileFacet struct {
	MimeType string  `json:"mimeType,omitempty"`
	Hashes   *Hashes `json:"hashes,omitempty"`
}

// FolderFacet provides information about the folder metadata of an item.
type FolderFacet struct {
	ChildCount int `json:"childCount,omitempty"`
}

// SpecialFolderFacet names a well-known folder such as documents or photos.
type SpecialFolderFacet struct {
	Name string `json:"name,omitempty"`
}

// RemoteItemFacet is present on items that live in another drive.
type RemoteItemFacet struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Size            int64           `json:"size,omitempty"`
	WebURL          string          `json:"webUrl,omitempty"`
	ParentReference *ItemReference  `json:"parentReference,omitempty"`
	FileSystemInfo  *FileSystemInfo `json:"fileSystemInfo,omitempty"`
	Folder          *FolderFacet    `json:"folder,omitempty"`
	File            *FileFacet      `json:"file,omitempty"`
}

// Drive is a user's or group's OneDrive, or a document library.
type Drive struct {
	ID        string       `json:"id,omitempty"`
	DriveType string       `json:"driveType,omitempty"`
	Name      string       `json:"name,omitempty"`
	WebURL    string       `json:"webUrl,omitempty"`
	Owner     *IdentitySet `json:"owner,omitempty"`
	Quota     *Quota       `json:"quota,omitempty"`

	Items   *CollectionPage[DriveItem] `json:"items,omitempty"`
	Shared  *CollectionPage[DriveItem] `json:"shared,omitempty"`
	Special *CollectionPage[DriveItem] `json:"special,omitempty"`

	AdditionalData AdditionalData `json:"-"`
}

func (d *Drive) UnmarshalJSON(data []byte) error {
	type alias Drive
	extra, err := decodeEntity(data, (*alias)(d))
	if err != nil {
		return err
	}
	d.AdditionalData = extra
	return nil
}

func (d Drive) MarshalJSON() ([]byte, error) {
	type alias Drive
	return encodeEntity(alias(d), d.AdditionalData)
}

func (d *Drive) extensionData() AdditionalData { return d.AdditionalData }

func (d *Drive) visitCollections(visit func(field string, page pageableCollection)) {
	if d.Items != nil {
		visit("items", d.Items)
	}
	if d.Shared != nil {
		visit("shared", d.Shared)
	}
	if d.Special != nil {
		visit("special", d.Special)
	}
}

// DriveItem represents a file, folder, or other item stored in a drive.
type DriveItem struct {
	ID                   string              `json:"id,omitempty"`
	Name                 string              `json:"name,omitempty"`
	ETag                 string              `json:"eTag,omitempty"`
	CTag                 string              `json:"cTag,omitempty"`
	Size                 int64               `json:"size,omitempty"`
	WebURL               string              `json:"webUrl,omitempty"`
	Description          string              `json:"description,omitempty"`
	CreatedDateTime      *time.Time          `json:"createdDateTime,omitempty"`
	LastModifiedDateTime *time.Time          `json:"lastModifiedDateTime,omitempty"`
	CreatedBy            *IdentitySet        `json:"createdBy,omitempty"`
	LastModifiedBy       *IdentitySet        `json:"lastModifiedBy,omitempty"`
	ParentReference      *ItemReference      `json:"parentReference,omitempty"`
	FileSystemInfo       *FileSystemInfo     `json:"fileSystemInfo,omitempty"`
	File                 *FileFacet          `json:"file,omitempty"`
	Folder               *FolderFacet        `json:"folder,omitempty"`
	SpecialFolder        *SpecialFolderFacet `json:"specialFolder,omitempty"`
	RemoteItem           *RemoteItemFacet    `json:"remoteItem,omitempty"`

	Children    *CollectionPage[DriveItem]        `json:"children,omitempty"`
	Permissions *CollectionPage[Permission]       `json:"permissions,omitempty"`
	Versions    *CollectionPage[DriveItemVersion] `json:"versions,omitempty"`
	Thumbnails  *CollectionPage[ThumbnailSet]     `json:"thumbnails,omitempty"`

	AdditionalData AdditionalData `json:"-"`
}

func (i *DriveItem) UnmarshalJSON(data []byte) error {
	type alias DriveItem
	extra, err := decodeEntity(data, (*alias)(i))
	if err != nil {
		return err
	}
	i.AdditionalData = extra
	return nil
}

func (i DriveItem) MarshalJSON() ([]byte, error) {
	type alias DriveItem
	return encodeEntity(alias(i), i.AdditionalData)
}

func (i *DriveItem) extensionData() AdditionalData { return i.AdditionalData }

func (i *DriveItem) visitCollections(visit func(field string, page pageableCollection)) {
	if i.Children != nil {
		visit("children", i.Children)
	}
	if i.Permissions != nil {
		visit("permissions", i.Permissions)
	}
	if i.Versions != nil {
		visit("versions", i.Versions)
	}
	if i.Thumbnails != nil {
		visit("thumbnails", i.Thumbnails)
	}
}

// IsFolder reports whether the item is a folder, locally or in a remote drive.
func (i *DriveItem) IsFolder() bool {
	return i.Folder != nil || (i.RemoteItem != nil && i.RemoteItem.Folder != nil)
}

// DriveItemVersion is a previous version of a file.
type DriveItemVersion struct {
	ID                   string       `json:"id,omitempty"`
	LastModifiedBy       *IdentitySet `json:"lastModifiedBy,omitempty"`
	LastModifiedDateTime *time.Time   `json:"lastModifiedDateTime,omitempty"`
	Size                 int64        `json:"size,omitempty"`
}

// Thumbnail is a single rendition of an item.
type Thumbnail struct {
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
	URL    string `json:"url,omitempty"`
}

// ThumbnailSet groups the renditions of an item by size.
type ThumbnailSet struct {
	ID     string     `json:"id,omitempty"`
	Large  *Thumbnail `json:"large,omitempty"`
	Medium *Thumbnail `json:"medium,omitempty"`
	Small  *Thumbnail `json:"small,omitempty"`
	Source *Thumbnail `json:"source,omitempty"`
}

// SharingLink describes a link-based permission.
type SharingLink struct {
	Application *Identity `json:"application,omitempty"`
	Scope       string    `json:"scope,omitempty"`
	Type        string    `json:"type,omitempty"`
	WebURL      string    `json:"webUrl,omitempty"`
}

// SharingInvitation describes an invitation-based permission.
type SharingInvitation struct {
	Email          string       `json:"email,omitempty"`
	InvitedBy      *IdentitySet `json:"invitedBy,omitempty"`
	SignInRequired bool         `json:"signInRequired,omitempty"`
}

// Permission is a sharing permission granted on an item.
type Permission struct {
	ID            string             `json:"id,omitempty"`
	Roles         []string           `json:"roles,omitempty"`
	ShareID       string             `json:"shareId,omitempty"`
	GrantedTo     *IdentitySet       `json:"grantedTo,omitempty"`
	InheritedFrom *ItemReference     `json:"inheritedFrom,omitempty"`
	Invitation    *SharingInvitation `json:"invitation,omitempty"`
	Link          *SharingLink       `json:"link,omitempty"`

	AdditionalData AdditionalData `json:"-"`
}

func (p *Permission) UnmarshalJSON(data []byte) error {
	type alias Permission
	extra, err := decodeEntity(data, (*alias)(p))
	if err != nil {
		return err
	}
	p.AdditionalData = extra
	return nil
}

func (p Permission) MarshalJSON() ([]byte, error) {
	type alias Permission
	return encodeEntity(alias(p), p.AdditionalData)
}

// Share is an item shared with the signed-in user, addressed by a share ID
// or an encoded sharing URL.
type Share struct {
	ID    string       `json:"id,omitempty"`
	Name  string       `json:"name,omitempty"`
	Owner *IdentitySet `json:"owner,omitempty"`
	Root  *DriveItem   `json:"root,omitempty"`

	Items *CollectionPage[DriveItem] `json:"items,omitempty"`

	AdditionalData AdditionalData `json:"-"`
}

func (s *Share) UnmarshalJSON(data []byte) error {
	type alias Share
	extra, err := decodeEntity(data, (*alias)(s))
	if err != nil {
		return err
	}
	s.AdditionalData = extra
	return nil
}

func (s Share) MarshalJSON() ([]byte, error) {
	type alias Share
	return encodeEntity(alias(s), s.AdditionalData)
}

func (s *Share) extensionData() AdditionalData { return s.AdditionalData }

func (s *Share) visitCollections(visit func(field string, page pageableCollection)) {
	if s.Items != nil {
		visit("items", s.Items)
	}
}

// User is the signed-in user's profile.
type User struct {
	ID                string `json:"id,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	Mail              string `json:"mail,omitempty"`

	AdditionalData AdditionalData `json:"-"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	extra, err := decodeEntity(data, (*alias)(u))
	if err != nil {
		return err
	}
	u.AdditionalData = extra
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return encodeEntity(alias(u), u.AdditionalData)
}

// DriveRecipient identifies who an invitation is sent to.
type DriveRecipient struct {
	Email    string `json:"email,omitempty"`
	Alias    string `json:"alias,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
}

// InviteRequestBody is the body of an invite action.
type InviteRequestBody struct {
	Recipients     []DriveRecipient `json:"recipients"`
	Message        string           `json:"message,omitempty"`
	RequireSignIn  bool             `json:"requireSignIn,omitempty"`
	SendInvitation bool             `json:"sendInvitation,omitempty"`
	Roles          []string         `json:"roles"`
}
