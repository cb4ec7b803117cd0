package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plantquery/plantquery/internal/logging"
)

const defaultSweepInterval = 5 * time.Minute

// Sweeper runs ClearOldSessions on a fixed interval so idle mirrors
// are released even when nobody calls the client.
type Sweeper struct {
	client   *Client
	interval time.Duration
	logger   *logging.Logger
}

// NewSweeper builds a sweeper for the client. A non-positive interval
// falls back to five minutes.
func NewSweeper(client *Client, interval time.Duration, logger *logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Sweeper{client: client, interval: interval, logger: logger}
}

// Run sweeps until the context is cancelled. It blocks; callers run it
// in a goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("session sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("idle_threshold", s.client.IdleThreshold()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session sweeper stopped")
			return
		case <-ticker.C:
			if n := s.client.ClearOldSessions(ctx); n > 0 {
				s.logger.Info("idle sweep complete", zap.Int("removed", n))
			}
		}
	}
}
