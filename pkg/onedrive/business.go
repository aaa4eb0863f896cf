package onedrive

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/confidential"
	"golang.org/x/oauth2"
)

// Validation messages of the business authentication flows.
const (
	msgAppIDRequired              = "ActiveDirectoryAppId is required for authentication."
	msgReturnURLRequired          = "ActiveDirectoryReturnUrl is required for authenticating a business client."
	msgCertOrSecretRequired       = "Client certificate or client secret is required for authenticating a business web client."
	msgAppOnlyCertRequired        = "ActiveDirectoryClientCertificate is required for app-only authentication."
	msgAppOnlyEndpointRequired    = "Service endpoint base URL is required for app-only authentication."
	msgAppOnlyResourceRequired    = "ActiveDirectoryServiceResource is required for app-only authentication."
	msgAppOnlyTenantRequired      = "Tenant ID is required for app-only authentication."
	msgCustomProviderRequired     = "An authentication provider is required for a client using custom authentication."
	msgCustomEndpointRequired     = "Service endpoint base URL is required when using custom authentication."
	msgCodeRequired               = "Authorization code is required for authentication by code."
	msgCodeResourceRequired       = "Service resource ID is required for authentication by code."
	msgRefreshTokenRequired       = "Refresh token is required for silently authenticating a business client."
	msgSilentResourceRequired     = "ActiveDirectoryServiceResource is required for silently authenticating a business client."
	msgAssertionKeyNotRSA         = "Client certificate key must be an RSA private key for authenticating a business web client."
	msgCertificateKeyNotSpecified = "Client certificate requires a private key."
)

// BusinessAppConfig describes an Azure Active Directory application used to
// reach OneDrive for Business.
type BusinessAppConfig struct {
	AppID     string
	ReturnURL string

	// ServiceResource is the resource tokens are requested for, e.g.
	// https://contoso-my.sharepoint.com/.
	ServiceResource string
	// ServiceEndpointURL is the API root the client talks to, e.g.
	// https://contoso-my.sharepoint.com/_api/v2.0. It defaults to the API root
	// of ServiceResource.
	ServiceEndpointURL string
	// AuthenticationServiceURL is the authority. It defaults to the common
	// tenant.
	AuthenticationServiceURL string

	ClientSecret       string
	ClientCertificates []*x509.Certificate
	ClientKey          crypto.PrivateKey

	// Scopes overrides the scopes derived from ServiceResource.
	Scopes []string
}

func (c BusinessAppConfig) authority() string {
	if c.AuthenticationServiceURL != "" {
		return strings.TrimRight(c.AuthenticationServiceURL, "/")
	}
	return DefaultAuthority
}

func (c BusinessAppConfig) tokenURL() string {
	return c.authority() + "/oauth2/v2.0/token"
}

func (c BusinessAppConfig) resourceScopes() []string {
	if len(c.Scopes) > 0 {
		return c.Scopes
	}
	return []string{strings.TrimRight(c.ServiceResource, "/") + "/.default"}
}

// refreshScopes adds offline_access so a refresh token is issued.
func (c BusinessAppConfig) refreshScopes() []string {
	return append(append([]string(nil), c.resourceScopes()...), "offline_access")
}

func (c BusinessAppConfig) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.AppID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.ReturnURL,
		Scopes:       c.refreshScopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authority() + "/oauth2/v2.0/authorize",
			TokenURL: c.tokenURL(),
		},
	}
}

func (c BusinessAppConfig) hasCertificate() bool {
	return len(c.ClientCertificates) > 0
}

// businessOptions points opts at the business endpoint unless the caller
// chose a base URL.
func (c BusinessAppConfig) businessOptions(opts ClientOptions) ClientOptions {
	if opts.BaseURL == "" {
		opts.BaseURL = c.ServiceEndpointURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BusinessBaseURL(c.ServiceResource)
	}
	if opts.DrivePath == "" {
		opts.DrivePath = "drive"
	}
	return opts
}

// BusinessBaseURL returns the API root of a business service endpoint.
func BusinessBaseURL(serviceEndpoint string) string {
	return fmt.Sprintf(BusinessBaseURLFormat, strings.TrimRight(serviceEndpoint, "/"))
}

// BusinessAuthCodeURL returns the sign-in URL of the interactive business
// flow together with the PKCE verifier to redeem the code with
// NewBusinessClientByCode. userID, when set, is passed as a login hint.
func BusinessAuthCodeURL(cfg BusinessAppConfig, userID string) (authURL string, codeVerifier string, err error) {
	if cfg.AppID == "" {
		return "", "", newAuthenticationError(msgAppIDRequired)
	}
	if cfg.ReturnURL == "" {
		return "", "", newAuthenticationError(msgReturnURLRequired)
	}
	if cfg.ServiceResource == "" && len(cfg.Scopes) == 0 {
		return "", "", newAuthenticationError(msgCodeResourceRequired)
	}
	var opts []oauth2.AuthCodeOption
	if userID != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", userID))
	}
	return pkceAuthCodeURL(cfg.oauthConfig(), "state-does-not-matter", opts...)
}

// NewBusinessClientByCode redeems the code returned to the return URL of the
// interactive flow. The client refreshes its token with the issued refresh
// token.
func NewBusinessClientByCode(ctx context.Context, cfg BusinessAppConfig, code, codeVerifier string, opts ClientOptions) (*Client, error) {
	if cfg.AppID == "" {
		return nil, newAuthenticationError(msgAppIDRequired)
	}
	if cfg.ReturnURL == "" {
		return nil, newAuthenticationError(msgReturnURLRequired)
	}
	if code == "" {
		return nil, newAuthenticationError(msgCodeRequired)
	}
	if cfg.ServiceResource == "" {
		return nil, newAuthenticationError(msgCodeResourceRequired)
	}

	opts = cfg.businessOptions(opts).withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)

	config := cfg.oauthConfig()
	token, err := config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange authorization code for token: %w", ErrAuthenticationFailure, err)
	}
	return newAuthenticatedClient(ctx, config.TokenSource(ctx, token), opts), nil
}

// NewBusinessWebClientByCode redeems an authorization code for a web
// application authenticated by a client secret or certificate.
func NewBusinessWebClientByCode(ctx context.Context, cfg BusinessAppConfig, code string, opts ClientOptions) (*Client, error) {
	if cfg.AppID == "" {
		return nil, newAuthenticationError(msgAppIDRequired)
	}
	if cfg.ReturnURL == "" {
		return nil, newAuthenticationError(msgReturnURLRequired)
	}
	if code == "" {
		return nil, newAuthenticationError(msgCodeRequired)
	}
	if cfg.ServiceResource == "" {
		return nil, newAuthenticationError(msgCodeResourceRequired)
	}
	if cfg.ClientSecret == "" && !cfg.hasCertificate() {
		return nil, newAuthenticationError(msgCertOrSecretRequired)
	}

	opts = cfg.businessOptions(opts).withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()

	cred, err := cfg.msalCredential()
	if err != nil {
		return nil, err
	}
	app, err := confidential.New(cfg.authority(), cfg.AppID, cred, confidential.WithHTTPClient(opts.HTTPClient))
	if err != nil {
		return nil, fmt.Errorf("%w: creating confidential client: %w", ErrAuthenticationFailure, err)
	}

	scopes := cfg.resourceScopes()
	result, err := app.AcquireTokenByAuthCode(ctx, code, cfg.ReturnURL, scopes)
	if err != nil {
		return nil, fmt.Errorf("%w: redeeming authorization code: %w", ErrAuthenticationFailure, err)
	}

	initial := &oauth2.Token{AccessToken: result.AccessToken, TokenType: "Bearer", Expiry: result.ExpiresOn}
	source := oauth2.ReuseTokenSource(initial, &msalTokenSource{
		ctx:     ctx,
		client:  app,
		scopes:  scopes,
		account: result.Account,
	})
	return newAuthenticatedClient(ctx, source, opts), nil
}

func (c BusinessAppConfig) msalCredential() (confidential.Credential, error) {
	if c.hasCertificate() {
		if c.ClientKey == nil {
			return confidential.Credential{}, newAuthenticationError(msgCertificateKeyNotSpecified)
		}
		cred, err := confidential.NewCredFromCert(c.ClientCertificates, c.ClientKey)
		if err != nil {
			return confidential.Credential{}, fmt.Errorf("%w: loading client certificate: %w", ErrAuthenticationFailure, err)
		}
		return cred, nil
	}
	cred, err := confidential.NewCredFromSecret(c.ClientSecret)
	if err != nil {
		return confidential.Credential{}, fmt.Errorf("%w: loading client secret: %w", ErrAuthenticationFailure, err)
	}
	return cred, nil
}

// ResolveAppOnlyConfig validates an app-only configuration and fills in the
// service endpoint and the tenant's authority.
func ResolveAppOnlyConfig(cfg BusinessAppConfig, serviceEndpointBaseURL, tenantID string) (BusinessAppConfig, error) {
	if cfg.AppID == "" {
		return cfg, newAuthenticationError(msgAppIDRequired)
	}
	if !cfg.hasCertificate() {
		return cfg, newAuthenticationError(msgAppOnlyCertRequired)
	}
	if serviceEndpointBaseURL == "" {
		return cfg, newAuthenticationError(msgAppOnlyEndpointRequired)
	}
	if cfg.ServiceResource == "" {
		return cfg, newAuthenticationError(msgAppOnlyResourceRequired)
	}
	if tenantID == "" {
		return cfg, newAuthenticationError(msgAppOnlyTenantRequired)
	}
	if cfg.ClientKey == nil {
		return cfg, newAuthenticationError(msgCertificateKeyNotSpecified)
	}
	cfg.ServiceEndpointURL = BusinessBaseURL(serviceEndpointBaseURL)
	cfg.AuthenticationServiceURL = fmt.Sprintf(AuthorityURLFormat, tenantID)
	return cfg, nil
}

// NewAppOnlyClient authenticates the application itself with a certificate,
// without a signed-in user.
func NewAppOnlyClient(ctx context.Context, cfg BusinessAppConfig, serviceEndpointBaseURL, tenantID string, opts ClientOptions) (*Client, error) {
	cfg, err := ResolveAppOnlyConfig(cfg, serviceEndpointBaseURL, tenantID)
	if err != nil {
		return nil, err
	}

	opts = cfg.businessOptions(opts).withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()

	credential, err := azidentity.NewClientCertificateCredential(tenantID, cfg.AppID, cfg.ClientCertificates, cfg.ClientKey,
		&azidentity.ClientCertificateCredentialOptions{
			ClientOptions: azcore.ClientOptions{Transport: opts.HTTPClient},
		})
	if err != nil {
		return nil, fmt.Errorf("%w: creating certificate credential: %w", ErrAuthenticationFailure, err)
	}
	source := &azureTokenSource{ctx: ctx, credential: credential, scopes: cfg.resourceScopes()}
	return newAuthenticatedClient(ctx, source, opts), nil
}

// NewSilentBusinessClient resumes a business session of a public client from
// a refresh token.
func NewSilentBusinessClient(ctx context.Context, cfg BusinessAppConfig, refreshToken string, opts ClientOptions) (*Client, error) {
	if cfg.AppID == "" {
		return nil, newAuthenticationError(msgAppIDRequired)
	}
	if refreshToken == "" {
		return nil, newAuthenticationError(msgRefreshTokenRequired)
	}
	if cfg.ServiceResource == "" {
		return nil, newAuthenticationError(msgSilentResourceRequired)
	}

	cfg.ClientSecret = ""
	return cfg.refreshTokenClient(ctx, refreshToken, opts), nil
}

// NewSilentBusinessWebClient resumes a business session of a web application
// from a refresh token. The application authenticates with its client secret
// or, when certificates are configured, with a signed client assertion.
func NewSilentBusinessWebClient(ctx context.Context, cfg BusinessAppConfig, refreshToken string, opts ClientOptions) (*Client, error) {
	if cfg.AppID == "" {
		return nil, newAuthenticationError(msgAppIDRequired)
	}
	if cfg.ClientSecret == "" && !cfg.hasCertificate() {
		return nil, newAuthenticationError(msgCertOrSecretRequired)
	}
	if refreshToken == "" {
		return nil, newAuthenticationError(msgRefreshTokenRequired)
	}
	if cfg.ServiceResource == "" {
		return nil, newAuthenticationError(msgSilentResourceRequired)
	}

	if !cfg.hasCertificate() {
		return cfg.refreshTokenClient(ctx, refreshToken, opts), nil
	}

	key, ok := cfg.ClientKey.(*rsa.PrivateKey)
	if !ok {
		return nil, newAuthenticationError(msgAssertionKeyNotRSA)
	}
	opts = cfg.businessOptions(opts).withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()
	source := &assertionTokenSource{
		ctx:          ctx,
		httpClient:   opts.HTTPClient,
		tokenURL:     cfg.tokenURL(),
		clientID:     cfg.AppID,
		scopes:       cfg.refreshScopes(),
		cert:         cfg.ClientCertificates[0],
		key:          key,
		refreshToken: refreshToken,
	}
	return newAuthenticatedClient(ctx, source, opts), nil
}

func (c BusinessAppConfig) refreshTokenClient(ctx context.Context, refreshToken string, opts ClientOptions) *Client {
	opts = c.businessOptions(opts).withDefaults()
	opts.HTTPClient = opts.baseHTTPClient()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	source := c.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return newAuthenticatedClient(ctx, source, opts)
}

// NewClientWithCustomAuthentication creates a client whose requests are
// authorized by source.
func NewClientWithCustomAuthentication(ctx context.Context, serviceEndpointBaseURL string, source oauth2.TokenSource, opts ClientOptions) (*Client, error) {
	if source == nil {
		return nil, newAuthenticationError(msgCustomProviderRequired)
	}
	if serviceEndpointBaseURL == "" {
		return nil, newAuthenticationError(msgCustomEndpointRequired)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BusinessBaseURL(serviceEndpointBaseURL)
	}
	if opts.DrivePath == "" {
		opts.DrivePath = "drive"
	}
	return newAuthenticatedClient(ctx, source, opts), nil
}
