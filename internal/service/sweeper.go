package service

import (
	"context"
	"time"

	"sessiond/internal/logger"
	"sessiond/internal/repository/models"
)

// Sweeper periodically deletes fully-retired session records: rows that are
// both deactivated and expired. Records that are only time-expired are left
// alone, since a stale record can still be the user's most recent session.
type Sweeper struct {
	repo     models.TokenRepository
	l        logger.Logger
	interval time.Duration
}

func NewSweeper(repo models.TokenRepository, interval time.Duration, l logger.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		l:        l,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Store errors
// are logged and retried on the next tick, never propagated.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.l.Info("Revocation sweeper started", logger.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.l.Info("Revocation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	purged, err := s.repo.PurgeRetired(ctx)
	if err != nil {
		s.l.Error("Sweep failed, retrying on next tick", logger.Error(err))
		return
	}

	s.l.Info("Sweep completed", logger.Int64("purged", purged))
}
