package onedrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// refreshFixture is a token endpoint plus a two-page children listing that
// records the Authorization header of every Graph request.
type refreshFixture struct {
	mu         sync.Mutex
	refreshes  int
	authHeader []string
	tokenURL   string
	graphURL   string
}

func newRefreshFixture(t *testing.T) *refreshFixture {
	t.Helper()
	f := &refreshFixture{}

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		f.mu.Lock()
		f.refreshes++
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","refresh_token":"rotated","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenServer.Close)

	var graph *httptest.Server
	graph = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.authHeader = append(f.authHeader, r.Header.Get("Authorization"))
		f.mu.Unlock()
		if r.URL.Query().Get("page") == "" {
			fmt.Fprintf(w, `{"value":[{"id":"a"}],"@odata.nextLink":"%s/me/drive/items/root/children?page=1"}`, graph.URL)
			return
		}
		fmt.Fprint(w, `{"value":[{"id":"b"}]}`)
	}))
	t.Cleanup(graph.Close)

	f.tokenURL = tokenServer.URL + "/token"
	f.graphURL = graph.URL
	return f
}

func (f *refreshFixture) client(ctx context.Context, tok *Token, onNewToken func(*Token) error) *Client {
	return NewClient(ctx, tok, "client-id", onNewToken, ClientOptions{
		BaseURL: f.graphURL,
		AuthEndpoints: AuthEndpoints{
			AuthURL:   f.tokenURL,
			TokenURL:  f.tokenURL,
			DeviceURL: f.tokenURL,
		},
	})
}

func TestNewClientSavesRefreshedToken(t *testing.T) {
	tests := []struct {
		name          string
		token         *Token
		wantRefreshes int
		wantSaved     []string
		wantAuth      string
	}{
		{
			name:          "expired token is refreshed once for both pages",
			token:         &Token{AccessToken: "stale", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)},
			wantRefreshes: 1,
			wantSaved:     []string{"fresh"},
			wantAuth:      "Bearer fresh",
		},
		{
			name:     "valid token is used as is",
			token:    &Token{AccessToken: "current", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)},
			wantAuth: "Bearer current",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRefreshFixture(t)
			var saved []string
			client := f.client(context.Background(), tt.token, func(tok *Token) error {
				saved = append(saved, tok.AccessToken)
				return nil
			})

			items, next, err := CollectAll(context.Background(), client.ItemChildren("root"), Paging{FetchAll: true}, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, itemIDs(items))
			assert.Empty(t, next)

			assert.Equal(t, tt.wantRefreshes, f.refreshes)
			assert.Equal(t, tt.wantSaved, saved)
			assert.Equal(t, []string{tt.wantAuth, tt.wantAuth}, f.authHeader, "the followed next link carries the same credentials")
		})
	}
}

func TestNewClientSaveFailureIsRetried(t *testing.T) {
	f := newRefreshFixture(t)
	saveErr := errors.New("disk full")
	attempts := 0
	client := f.client(context.Background(),
		&Token{AccessToken: "stale", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)},
		func(tok *Token) error {
			attempts++
			if attempts == 1 {
				return saveErr
			}
			return nil
		})

	_, _, err := CollectAll(context.Background(), client.ItemChildren("root"), Paging{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, saveErr)
	assert.Empty(t, f.authHeader, "no Graph request without a saved token")

	items, _, err := CollectAll(context.Background(), client.ItemChildren("root"), Paging{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, itemIDs(items))
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, f.refreshes, "the refreshed token is reused for the retry")
}

type stubTokenSource struct {
	tok *oauth2.Token
}

func (s *stubTokenSource) Token() (*oauth2.Token, error) {
	return s.tok, nil
}

func TestTokenSaverRotatedRefreshToken(t *testing.T) {
	src := &stubTokenSource{tok: &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}}
	var saved []*Token
	saver := newTokenSaver(src, &Token{AccessToken: "a1", RefreshToken: "r1"}, func(tok *Token) error {
		saved = append(saved, tok)
		return nil
	})

	_, err := saver.Token()
	require.NoError(t, err)
	assert.Empty(t, saved)

	src.tok = &oauth2.Token{AccessToken: "a1", RefreshToken: "r2"}
	tok, err := saver.Token()
	require.NoError(t, err)
	assert.Equal(t, "r2", tok.RefreshToken)
	require.Len(t, saved, 1)
	assert.Equal(t, "r2", saved[0].RefreshToken)

	_, err = saver.Token()
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}
