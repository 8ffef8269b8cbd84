package scheduler

import (
	"context"
	"log/slog"
	"time"

	"scholarship_catalog/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	SourceID() string
	Sync(ctx context.Context) (*domain.SyncStats, error)
}

// Recorder receives the outcome of every run.
type Recorder interface {
	ObserveSync(source string, stats *domain.SyncStats, err error)
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	timeout  time.Duration
	recorder Recorder
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval, timeout time.Duration, recorder Recorder, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start runs a sync immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "timeout", s.timeout)

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.syncer.Sync(syncCtx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
	}
	if s.recorder != nil {
		s.recorder.ObserveSync(s.syncer.SourceID(), stats, err)
	}
}
