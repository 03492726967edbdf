package client

import (
	"net/http"
	"net/url"
	"time"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

// NewHTTPClient creates the shared HTTP client used for every upstream request.
//
// The transport chain is, from the outside in: retries (failsafe-go), rate
// limiting, response decompression, then a clone of http.DefaultTransport with
// the optional proxy.
func NewHTTPClient(cfg *config.Config) *http.Client {
	inner := newInnerTransport(cfg)
	retry := newRetryTransport(inner, cfg)
	return &http.Client{
		Timeout:   clientTimeout(cfg),
		Transport: retry,
	}
}

// NewLoginClient creates a client for the credential form submission. It does
// not follow redirects so Set-Cookie headers of the login response are kept,
// and it skips the retry layer since the form body is sent once.
func NewLoginClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout:   clientTimeout(cfg),
		Transport: newInnerTransport(cfg),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func clientTimeout(cfg *config.Config) time.Duration {
	return config.ParseDuration("client_timeout", cfg.ClientTimeout, 30*time.Second)
}

func newInnerTransport(cfg *config.Config) http.RoundTripper {
	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			// Log error but continue without proxy
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	var transport http.RoundTripper = newCompressionTransport(baseTransport)
	if cfg.RateLimit.RequestsPerSecond > 0 {
		transport = newRateLimitTransport(transport, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	return transport
}
