// Package onedrive provides constants used throughout the OneDrive SDK.
package onedrive

import "time"

// SDK identification
const (
	SDKVersion             = "1.0.0"
	SDKVersionHeaderPrefix = "onedrive"
	HeaderSDKVersion       = "SdkVersion"
	ContentTypeJSON        = "application/json"
)

// Service endpoints
const (
	DefaultBaseURL        = "https://graph.microsoft.com/v1.0"
	DefaultAuthority      = "https://login.microsoftonline.com/common"
	AuthorityURLFormat    = "https://login.microsoftonline.com/%s"
	BusinessBaseURLFormat = "%s/_api/v2.0"
)

// Default HTTP Configuration Constants
const (
	DefaultTimeout = 30 * time.Second
	DefaultBurst   = 1
)

// Authentication Constants
const (
	DefaultDeviceCodeExpiry = 15 * time.Minute // used when the service omits expires_in
)
