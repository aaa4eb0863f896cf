package onedrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"golang.org/x/oauth2"
)

// Token represents an OAuth2 Token and is the canonical representation
// used by the SDK.
type Token oauth2.Token

// HTTPDoer sends HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOptions configures a Client. Zero fields take their defaults.
type ClientOptions struct {
	// BaseURL is the service root, e.g. https://graph.microsoft.com/v1.0.
	BaseURL string
	// DrivePath is the default drive relative to BaseURL: "me/drive" for
	// Microsoft Graph, "drive" for a business endpoint.
	DrivePath string

	SDKVersionHeaderPrefix string
	SDKVersion             string

	// HTTPClient is the client underneath the authenticating transport.
	// When nil one is built from HTTPConfig.
	HTTPClient *http.Client
	HTTPConfig HTTPConfig

	// AuthEndpoints are used to refresh consumer tokens.
	AuthEndpoints AuthEndpoints

	Logger     logger.Logger
	Serializer Serializer
}

// DefaultClientOptions returns the options used for Microsoft Graph.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{}.withDefaults()
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.DrivePath == "" {
		o.DrivePath = "me/drive"
	}
	if o.SDKVersionHeaderPrefix == "" {
		o.SDKVersionHeaderPrefix = SDKVersionHeaderPrefix
	}
	if o.SDKVersion == "" {
		o.SDKVersion = SDKVersion
	}
	if o.HTTPConfig == (HTTPConfig{}) {
		o.HTTPConfig = DefaultHTTPConfig()
	}
	if o.AuthEndpoints == (AuthEndpoints{}) {
		o.AuthEndpoints = DefaultAuthEndpoints()
	}
	if o.Logger == nil {
		o.Logger = logger.NoopLogger{}
	}
	if o.Serializer == nil {
		o.Serializer = JSONSerializer{}
	}
	return o
}

func (o ClientOptions) baseHTTPClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return NewConfiguredHTTPClient(o.HTTPConfig)
}

// Client is a stateful client for the OneDrive API. Request builders obtained
// from it share its transport, serializer and base URL.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	drivePath  string
	sdkHeader  string
	logger     logger.Logger
	serializer Serializer
}

// NewClient creates a client for a consumer account. It takes an initial
// token and a callback that is invoked whenever a new token is generated
// after a refresh.
func NewClient(ctx context.Context, initialToken *Token, clientID string, onNewToken func(*Token) error, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()
	config := NewOAuthConfig(clientID, opts.AuthEndpoints)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	source := (*oauth2.Config)(config).TokenSource(ctx, (*oauth2.Token)(initialToken))
	return newAuthenticatedClient(ctx, newTokenSaver(source, initialToken, onNewToken), opts)
}

// NewClientWithHTTPClient creates a client that sends every request through
// httpClient, which is expected to authenticate them.
func NewClientWithHTTPClient(httpClient HTTPDoer, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	return &Client{
		httpClient: httpClient,
		baseURL:    opts.BaseURL,
		drivePath:  strings.Trim(opts.DrivePath, "/"),
		sdkHeader:  fmt.Sprintf("%s-go-%s", opts.SDKVersionHeaderPrefix, opts.SDKVersion),
		logger:     opts.Logger,
		serializer: opts.Serializer,
	}
}

func newAuthenticatedClient(ctx context.Context, source oauth2.TokenSource, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	base := opts.baseHTTPClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = base.Timeout
	return NewClientWithHTTPClient(httpClient, opts)
}

// SetLogger allows users of the SDK to set their own logger.
func (c *Client) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NoopLogger{}
	}
	c.logger = l
}

// BaseURL returns the service root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// tokenSaver passes every token it has not handed out before to save. The
// token is only remembered once save succeeds, so a failed save is retried
// on the next request.
type tokenSaver struct {
	src  oauth2.TokenSource
	save func(*Token) error

	mu    sync.Mutex
	known *oauth2.Token
}

func newTokenSaver(src oauth2.TokenSource, initial *Token, save func(*Token) error) *tokenSaver {
	return &tokenSaver{src: src, save: save, known: (*oauth2.Token)(initial)}
}

func (s *tokenSaver) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sameCredentials(s.known, tok) {
		return tok, nil
	}
	if s.save != nil {
		if err := s.save((*Token)(tok)); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}
	s.known = tok
	return tok, nil
}

// sameCredentials reports whether a and b carry the same access and refresh
// token. A rotated refresh token counts as new even when the access token is
// unchanged.
func sameCredentials(a, b *oauth2.Token) bool {
	if a == nil || b == nil {
		return false
	}
	return a.AccessToken == b.AccessToken && a.RefreshToken == b.RefreshToken
}

// apiCall sends one request and categorizes the failure modes. A non-2xx
// status yields an *APIError and the body is closed; on success the caller
// owns the response body.
func (c *Client) apiCall(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	c.logger.Debug("apiCall invoked", "method", method, "url", url)

	if c.httpClient == nil {
		return nil, errors.New("HTTP client is nil, please provide a valid HTTP client")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", ContentTypeJSON)
	req.Header.Set(HeaderSDKVersion, c.sdkHeader)

	res, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		return nil, &TransportError{Method: method, URL: url, Err: err, kind: classifyTransport(err)}
	}
	c.logger.Debug("apiCall completed", "method", method, "status", res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer closeBodySafely(res.Body, c.logger, "error response")
		resBody, _ := io.ReadAll(res.Body)
		return nil, newAPIError(res, resBody)
	}
	return res, nil
}

// classifyTransport maps token refresh failures surfaced by the oauth2
// transport onto sentinel errors.
func classifyTransport(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return nil
	}
	switch retrieveErr.ErrorCode {
	case "invalid_request", "invalid_client", "invalid_grant",
		"unauthorized_client", "unsupported_grant_type",
		"invalid_scope", "access_denied":
		return ErrReauthRequired
	case "server_error", "temporarily_unavailable":
		return ErrRetryLater
	}
	return nil
}

// closeBodySafely closes an HTTP response body and logs any error.
func closeBodySafely(body io.Closer, log logger.Logger, operation string) {
	if err := body.Close(); err != nil {
		log.Warnf("Failed to close %s body: %v", operation, err)
	}
}
