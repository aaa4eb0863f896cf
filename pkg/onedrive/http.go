package onedrive

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig holds settings for the HTTP client underneath the SDK.
type HTTPConfig struct {
	Timeout time.Duration `json:"timeout"`
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Burst             int     `json:"burst"`
}

// DefaultHTTPConfig returns the default HTTP settings.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout: DefaultTimeout,
		Burst:   DefaultBurst,
	}
}

// NewConfiguredHTTPClient builds an *http.Client from cfg.
func NewConfiguredHTTPClient(cfg HTTPConfig) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewRateLimitedTransport(http.DefaultTransport, cfg),
	}
}

// NewRateLimitedTransport wraps base so requests are paced according to cfg.
// base is returned unchanged when pacing is disabled.
func NewRateLimitedTransport(base http.RoundTripper, cfg HTTPConfig) http.RoundTripper {
	if cfg.RequestsPerSecond <= 0 {
		return base
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = DefaultBurst
	}
	return &rateLimitedTransport{
		base:    base,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	return t.base.RoundTrip(req)
}
