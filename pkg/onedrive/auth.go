// Package onedrive (auth.go) provides functions for handling OAuth2 authentication
// of consumer accounts with the Microsoft identity platform. This includes the
// Authorization Code Grant with PKCE (Proof Key for Code Exchange) and the
// Device Code Flow.
package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cv "github.com/nirasan/go-oauth-pkce-code-verifier"
	"github.com/tonimelisma/onedrive-sdk-go/internal/logger"
	"golang.org/x/oauth2"
)

// DefaultScopes are requested by the consumer sign-in flows.
var DefaultScopes = []string{"offline_access", "files.readwrite.all", "user.read", "email", "openid", "profile"}

// AuthEndpoints are the OAuth endpoints of the identity platform. Tests point
// them at a local server.
type AuthEndpoints struct {
	AuthURL   string `json:"authUrl"`
	TokenURL  string `json:"tokenUrl"`
	DeviceURL string `json:"deviceUrl"`
}

// DefaultAuthEndpoints returns the endpoints of the common tenant.
func DefaultAuthEndpoints() AuthEndpoints {
	return AuthEndpoints{
		AuthURL:   DefaultAuthority + "/oauth2/v2.0/authorize",
		TokenURL:  DefaultAuthority + "/oauth2/v2.0/token",
		DeviceURL: DefaultAuthority + "/oauth2/v2.0/devicecode",
	}
}

// OAuthConfig is an alias for oauth2.Config, tailored for OneDrive.
type OAuthConfig oauth2.Config

// NewOAuthConfig returns the OAuth2 configuration for a public client.
//
// Example:
//
//	oauthCfg := onedrive.NewOAuthConfig("YOUR_CLIENT_ID", onedrive.DefaultAuthEndpoints())
//	// Use oauthCfg with StartAuthentication and CompleteAuthentication
func NewOAuthConfig(clientID string, endpoints AuthEndpoints) *OAuthConfig {
	return &OAuthConfig{
		ClientID: clientID,
		Scopes:   DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  endpoints.AuthURL,
			TokenURL: endpoints.TokenURL,
		},
	}
}

// DeviceCodeResponse is the answer of the device code endpoint. UserCode and
// VerificationURI are shown to the user; DeviceCode is polled with
// VerifyDeviceCode.
type DeviceCodeResponse struct {
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`
}

// StartAuthentication begins the OAuth2 Authorization Code Grant flow with PKCE.
// It generates a code verifier and challenge, then constructs the authorization URL
// to which the user should be redirected.
//
// Returns:
//   - authURL: The URL for the user to visit to authorize the application.
//   - codeVerifier: The PKCE code verifier string. It must be kept by the
//     caller and passed to CompleteAuthentication.
//   - err: Any error encountered during the process.
func StartAuthentication(ctx context.Context, oauthConfig *OAuthConfig) (authURL string, codeVerifier string, err error) {
	if ctx == nil {
		return "", "", fmt.Errorf("context must not be nil for StartAuthentication")
	}
	if oauthConfig == nil {
		return "", "", fmt.Errorf("oauth configuration is nil")
	}
	authURL, codeVerifier, err = pkceAuthCodeURL((*oauth2.Config)(oauthConfig), "state-does-not-matter")
	if err != nil {
		return "", "", err
	}
	return authURL, codeVerifier, nil
}

// pkceAuthCodeURL creates a verifier and the authorization URL carrying its
// S256 challenge.
func pkceAuthCodeURL(config *oauth2.Config, state string, opts ...oauth2.AuthCodeOption) (string, string, error) {
	codeVerifierObj, err := cv.CreateCodeVerifier()
	if err != nil {
		return "", "", fmt.Errorf("could not create PKCE code verifier: %w", err)
	}
	opts = append(opts,
		oauth2.SetAuthURLParam("code_challenge", codeVerifierObj.CodeChallengeS256()),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return config.AuthCodeURL(state, opts...), codeVerifierObj.String(), nil
}

// CompleteAuthentication exchanges an authorization code (obtained after user consent
// in the PKCE flow) for an OAuth token.
// It requires the original PKCE code verifier that was generated by StartAuthentication.
//
// The Expiry field is filled from expires_in when the exchange left it
// empty, since the token source only refreshes tokens with a known expiry.
func CompleteAuthentication(ctx context.Context, oauthConfig *OAuthConfig, code string, verifier string) (*Token, error) {
	if oauthConfig == nil {
		return nil, fmt.Errorf("oauth configuration is nil")
	}
	pkceCodeVerifier := oauth2.SetAuthURLParam("code_verifier", verifier)
	token, err := (*oauth2.Config)(oauthConfig).Exchange(ctx, code, pkceCodeVerifier)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange authorization code for token: %w", ErrOperationFailed, err)
	}

	if token.Expiry.IsZero() {
		switch expiresIn := token.Extra("expires_in").(type) {
		case float64:
			token.Expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
		case string:
			if d, pErr := time.ParseDuration(expiresIn + "s"); pErr == nil {
				token.Expiry = time.Now().Add(d)
			}
		}
	}

	return (*Token)(token), nil
}

// InitiateDeviceCodeFlow starts the OAuth2 Device Code Flow.
// This flow is suitable for CLI applications or devices without a web browser.
//
// Example:
//
//	resp, err := onedrive.InitiateDeviceCodeFlow(ctx, "YOUR_CLIENT_ID", onedrive.DefaultAuthEndpoints(), nil)
//	if err != nil { log.Fatal(err) }
//	fmt.Println(resp.Message)
//	// Store resp.DeviceCode and poll using VerifyDeviceCode
func InitiateDeviceCodeFlow(ctx context.Context, clientID string, endpoints AuthEndpoints, log logger.Logger) (*DeviceCodeResponse, error) {
	if log == nil {
		log = logger.NoopLogger{}
	}
	data := url.Values{}
	data.Set("client_id", clientID)
	data.Set("scope", strings.Join(DefaultScopes, " "))

	res, err := authCall(ctx, endpoints.DeviceURL, data, log)
	if err != nil {
		return nil, fmt.Errorf("requesting device code from %s: %w", endpoints.DeviceURL, err)
	}
	defer closeBodySafely(res.Body, log, "device code response")

	var deviceCodeResponse DeviceCodeResponse
	if err := json.NewDecoder(res.Body).Decode(&deviceCodeResponse); err != nil {
		return nil, &DecodeError{Target: "device code", Err: err}
	}

	return &deviceCodeResponse, nil
}

// VerifyDeviceCode polls the token endpoint once to exchange a device code for
// a token. Until the user has signed in it fails with ErrAuthorizationPending.
//
// Example:
//
//	token, err := onedrive.VerifyDeviceCode(ctx, "YOUR_CLIENT_ID", deviceCode, endpoints, nil)
//	if errors.Is(err, onedrive.ErrAuthorizationPending) {
//	    // poll again after resp.Interval seconds
//	}
func VerifyDeviceCode(ctx context.Context, clientID string, deviceCode string, endpoints AuthEndpoints, log logger.Logger) (*Token, error) {
	if log == nil {
		log = logger.NoopLogger{}
	}
	data := url.Values{}
	data.Set("grant_type", "urn:ietf:params:oauth:grant-type:device_code")
	data.Set("client_id", clientID)
	data.Set("device_code", deviceCode)

	res, err := authCall(ctx, endpoints.TokenURL, data, log)
	if err != nil {
		return nil, fmt.Errorf("polling token endpoint %s: %w", endpoints.TokenURL, err)
	}
	defer closeBodySafely(res.Body, log, "token response")

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response body: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(bodyBytes, &token); err != nil {
		return nil, &DecodeError{Target: "device code token", Err: err}
	}

	var expiresInHolder struct {
		ExpiresIn json.Number `json:"expires_in"`
	}
	if err := json.Unmarshal(bodyBytes, &expiresInHolder); err != nil {
		log.Debugf("could not parse 'expires_in' field from token response: %v", err)
	}
	if expiresInHolder.ExpiresIn != "" {
		if seconds, err := expiresInHolder.ExpiresIn.Int64(); err == nil && seconds > 0 {
			token.Expiry = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}

	return (*Token)(&token), nil
}

// authCall posts a form to an OAuth endpoint and maps OAuth error responses
// onto sentinel errors. It does not use an authenticated client.
func authCall(ctx context.Context, endpoint string, form url.Values, log logger.Logger) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request for POST %s failed: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Debug("OAuth request", "url", endpoint)
	res, err := NewConfiguredHTTPClient(DefaultHTTPConfig()).Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		return nil, &TransportError{Method: http.MethodPost, URL: endpoint, Err: err}
	}
	log.Debug("OAuth response", "url", endpoint, "status", res.StatusCode)

	if res.StatusCode < http.StatusBadRequest {
		return res, nil
	}

	defer closeBodySafely(res.Body, log, "OAuth error response")
	resBodyBytes, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		return nil, fmt.Errorf("HTTP error %s from %s (could not read response body)", res.Status, endpoint)
	}

	var oauthError struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if jsonErr := json.Unmarshal(resBodyBytes, &oauthError); jsonErr == nil && oauthError.Error != "" {
		switch oauthError.Error {
		case "authorization_pending", "slow_down":
			return nil, ErrAuthorizationPending
		case "authorization_declined", "access_denied":
			return nil, ErrAuthorizationDeclined
		case "expired_token":
			return nil, ErrTokenExpired
		case "invalid_request", "invalid_grant":
			return nil, fmt.Errorf("%w: %s (OAuth server)", ErrInvalidRequest, oauthError.ErrorDescription)
		default:
			return nil, fmt.Errorf("OAuth authentication error '%s': %s", oauthError.Error, oauthError.ErrorDescription)
		}
	}
	return nil, fmt.Errorf("HTTP error %s from %s: %s", res.Status, endpoint, string(resBodyBytes))
}
