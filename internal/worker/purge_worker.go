package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes stored session entries whose retention TTL has elapsed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartPurgeWorker runs purger every interval until ctx is cancelled. The
// returned channel is closed once the loop exits.
func StartPurgeWorker(ctx context.Context, purger Purger, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if purger == nil || interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := purger.PurgeExpired(ctx)
				if err != nil {
					logger.Warn("purge expired session entries", zap.Error(err))
					continue
				}
				if removed > 0 {
					logger.Info("purged expired session entries", zap.Int64("count", removed))
				}
			}
		}
	}()
	return done
}
