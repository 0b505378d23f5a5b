package revocation

import (
	"context"
	"time"

	"github.com/nkiryanov/medify/internal/logger"
)

const DefaultSweepInterval = time.Minute

// Sweep the store every interval until ctx is done.
// The returned channel is closed when the sweeper has stopped.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, logger logger.Logger) <-chan struct{} {
	stopped := make(chan struct{})
	logger.Debug("Starting revocation sweeper", "interval", interval)

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Debug("Revocation sweeper stopped by context")
				return

			case <-ticker.C:
				evicted, left := s.Sweep()
				logger.Debug("Revocation sweeper tick", "evicted", evicted, "left", left)
			}
		}
	}()

	return stopped
}
