package grant

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes grants that expired before the retention
// window. Expired grants deny on their own; the sweep only reclaims rows,
// so a missed tick never weakens enforcement.
type Sweeper struct {
	repo      Repository
	log       *slog.Logger
	interval  time.Duration
	retention time.Duration
	clock     func() time.Time
}

func NewSweeper(repo Repository, log *slog.Logger, interval, retention time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention < 0 {
		retention = 0
	}
	return &Sweeper{repo: repo, log: log, interval: interval, retention: retention, clock: time.Now}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := s.clock().UTC().Add(-s.retention)
	n, err := s.repo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		s.log.Error("grant sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.log.Info("swept expired grants", "deleted", n)
	}
}
