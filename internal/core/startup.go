// AngelaMos | 2026
// startup.go

package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// startupWait bounds how long bootstrap waits for a dependency that is
// still coming up alongside the service.
const startupWait = 30 * time.Second

// dialWithRetry runs connect until it succeeds or startupWait elapses, in
// which case the last connect error is returned. A cancelled ctx stops it
// with ctx.Err().
func dialWithRetry(ctx context.Context, name string, connect func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = startupWait

	return backoff.RetryNotify(connect, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		slog.Warn("dependency not reachable yet",
			"dependency", name,
			"retry_in", next.String(),
			"error", err,
		)
	})
}
