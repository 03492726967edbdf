package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/failsafehttp"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

// newRetryTransport wraps inner with a failsafe-go retry policy for transient
// failures: transport errors, 429 and 5xx responses.
func newRetryTransport(inner http.RoundTripper, cfg *config.Config) http.RoundTripper {
	if cfg.Retry.MaxRetries <= 0 {
		return inner
	}

	backoff := config.ParseDuration("retry.backoff", cfg.Retry.Backoff, 500*time.Millisecond)
	maxBackoff := config.ParseDuration("retry.max_backoff", cfg.Retry.MaxBackoff, 5*time.Second)
	if maxBackoff <= backoff {
		maxBackoff = backoff * 2
	}

	logger := config.GetLogger()
	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithMaxRetries(cfg.Retry.MaxRetries).
		WithBackoff(backoff, maxBackoff).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[*http.Response]) {
			logger.Debug().Int("attempt", e.Attempts()).Msg("Retrying upstream request")
		}).
		Build()

	return failsafehttp.NewRoundTripper(inner, policy)
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}
