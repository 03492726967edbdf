package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer refreshes the login session on a cron schedule so pipeline runs
// rarely pay for a login round trip.
type Warmer struct {
	store   *LoginStore
	cron    *cron.Cron
	timeout time.Duration
}

// NewWarmer schedules store refreshes using a cron spec such as "@every 90m".
func NewWarmer(store *LoginStore, spec string) (*Warmer, error) {
	w := &Warmer{
		store:   store,
		cron:    cron.New(),
		timeout: 30 * time.Second,
	}
	if _, err := w.cron.AddFunc(spec, w.Warm); err != nil {
		return nil, fmt.Errorf("invalid session warm schedule %q: %w", spec, err)
	}
	return w, nil
}

// Warm performs a login now. Failures are logged and the store keeps serving
// the previous session until it expires.
func (w *Warmer) Warm() {
	if !w.store.HasCredentials() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.store.Login(ctx); err != nil {
		w.store.logger.Warn().Err(err).Msg("Scheduled session refresh failed")
	}
}

// Start runs the schedule in the background.
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}
