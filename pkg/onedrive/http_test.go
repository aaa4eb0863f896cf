package onedrive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitedTransportDisabled(t *testing.T) {
	base := http.DefaultTransport
	assert.Same(t, base, NewRateLimitedTransport(base, HTTPConfig{}))
	assert.IsType(t, &rateLimitedTransport{}, NewRateLimitedTransport(base, HTTPConfig{RequestsPerSecond: 5}))
}

func TestRateLimitedTransportPacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewConfiguredHTTPClient(HTTPConfig{Timeout: 5 * time.Second, RequestsPerSecond: 20, Burst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		res, err := client.Get(server.URL)
		require.NoError(t, err)
		res.Body.Close()
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestRateLimitedTransportHonoursCancellation(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewRateLimitedTransport(http.DefaultTransport, HTTPConfig{RequestsPerSecond: 0.1, Burst: 1})}
	res, err := client.Get(server.URL)
	require.NoError(t, err)
	res.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	assert.Error(t, err)
	assert.Equal(t, 1, hits, "the throttled request never reaches the server")
}

func TestDefaultHTTPConfig(t *testing.T) {
	cfg := DefaultHTTPConfig()
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.Equal(t, DefaultBurst, cfg.Burst)
}
