package main

import (
	"context"
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/titulkysubs/titulkysubs/internal/resolver"
)

const countdownTemplate = `{{string . "prefix"}}{{bar . }} {{counters . }}s`

// countdownSleep renders upstream countdown waits as a progress bar on out.
// Waits shorter than a second, or any wait when out is nil, sleep silently.
func countdownSleep(out io.Writer) resolver.SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		if out == nil || d < time.Second {
			return resolver.SleepContext(ctx, d)
		}

		deadline := time.Now().Add(d)
		seconds := int64(d / time.Second)
		bar := pb.New64(seconds).SetTemplateString(countdownTemplate)
		bar.SetWriter(out)
		bar.Set("prefix", "Waiting for download countdown: ")
		bar.Start()
		defer bar.Finish()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range seconds {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				bar.Increment()
			}
		}
		return resolver.SleepContext(ctx, time.Until(deadline))
	}
}
