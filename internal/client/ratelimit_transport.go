package client

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimitTransport spaces out upstream requests so bursts of pipeline runs
// do not trip the site's anti-automation checks.
type rateLimitTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func newRateLimitTransport(base http.RoundTripper, requestsPerSecond float64, burst int) http.RoundTripper {
	if burst < 1 {
		burst = 1
	}
	return &rateLimitTransport{
		transport: base,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}
