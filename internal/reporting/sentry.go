// Package reporting forwards panics and unexpected failures to Sentry when a
// DSN is configured. Without one every function is a no-op.
package reporting

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/titulkysubs/titulkysubs/internal/config"
)

const flushTimeout = 2 * time.Second

// Init configures the Sentry client. The returned function flushes pending
// events and should be deferred by the caller.
func Init(cfg *config.Config, release string) (func(), error) {
	if cfg.Sentry.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	logger := config.GetLogger()
	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	return func() { sentry.Flush(flushTimeout) }, nil
}

// Enabled reports whether events are sent anywhere.
func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureError reports err with tags attached.
func CaptureError(err error, tags map[string]string) {
	if err == nil || !Enabled() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func CapturePanic(recovered any, tags map[string]string) {
	if recovered == nil || !Enabled() {
		return
	}
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	hub.Recover(recovered)
	hub.Flush(flushTimeout)
}

// GinRecovery recovers handler panics, reports them and answers 500.
func GinRecovery() gin.HandlerFunc {
	logger := config.GetLogger()
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("panic", fmt.Sprint(r)).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("Recovered from handler panic")
				CapturePanic(r, map[string]string{"route": c.FullPath()})
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
