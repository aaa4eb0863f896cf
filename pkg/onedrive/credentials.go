package onedrive

import (
	"context"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/confidential"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// azureTokenSource adapts an azcore credential to oauth2.TokenSource.
type azureTokenSource struct {
	ctx        context.Context
	credential azcore.TokenCredential
	scopes     []string
}

func (s *azureTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.credential.GetToken(s.ctx, policy.TokenRequestOptions{Scopes: s.scopes})
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring app-only token: %w", ErrAuthenticationFailure, err)
	}
	return &oauth2.Token{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresOn,
	}, nil
}

// msalTokenSource renews tokens for an account signed in through a
// confidential MSAL client.
type msalTokenSource struct {
	ctx     context.Context
	client  confidential.Client
	scopes  []string
	account confidential.Account
}

func (s *msalTokenSource) Token() (*oauth2.Token, error) {
	result, err := s.client.AcquireTokenSilent(s.ctx, s.scopes, confidential.WithSilentAccount(s.account))
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring token silently: %w", ErrReauthRequired, err)
	}
	return &oauth2.Token{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		Expiry:      result.ExpiresOn,
	}, nil
}

// assertionTokenSource redeems a refresh token, authenticating the
// application with a certificate-signed client assertion.
type assertionTokenSource struct {
	ctx        context.Context
	httpClient *http.Client
	tokenURL   string
	clientID   string
	scopes     []string
	cert       *x509.Certificate
	key        *rsa.PrivateKey

	mu           sync.Mutex // guards refreshToken
	refreshToken string
}

func (s *assertionTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assertion, err := s.clientAssertion(time.Now())
	if err != nil {
		return nil, err
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.clientID)
	form.Set("refresh_token", s.refreshToken)
	form.Set("scope", strings.Join(s.scopes, " "))
	form.Set("client_assertion_type", clientAssertionType)
	form.Set("client_assertion", assertion)

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redeeming refresh token: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading token response body: %w", err)
	}

	var tr struct {
		AccessToken      string `json:"access_token"`
		TokenType        string `json:"token_type"`
		RefreshToken     string `json:"refresh_token"`
		ExpiresIn        int64  `json:"expires_in"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tr); err != nil && res.StatusCode == http.StatusOK {
		return nil, &DecodeError{Target: "token", Err: err}
	}
	if res.StatusCode != http.StatusOK || tr.AccessToken == "" {
		return nil, &oauth2.RetrieveError{
			Response:         res,
			Body:             body,
			ErrorCode:        tr.Error,
			ErrorDescription: tr.ErrorDescription,
		}
	}
	if tr.RefreshToken != "" {
		s.refreshToken = tr.RefreshToken
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: s.refreshToken,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return token, nil
}

// clientAssertion signs the JWT that stands in for a client secret.
func (s *assertionTokenSource) clientAssertion(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.clientID,
		Subject:   s.clientID,
		Audience:  jwt.ClaimStrings{s.tokenURL},
		ID:        uuid.NewString(),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	thumbprint := sha1.Sum(s.cert.Raw)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(thumbprint[:])

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing client assertion: %w", err)
	}
	return signed, nil
}
