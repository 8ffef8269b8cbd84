package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scholarship_catalog/internal/config"
	"scholarship_catalog/internal/domain"
)

type SyncService struct {
	source       Source
	scholarships ScholarshipStore
	syncState    SyncStateStore
	txManager    TransactionManager
	publisher    Publisher
	cache        Cache
	logger       *slog.Logger
	config       config.SyncConfig
}

// NewSyncService wires a sync for one source. publisher and cache may be nil.
func NewSyncService(
	source Source,
	scholarships ScholarshipStore,
	syncState SyncStateStore,
	txManager TransactionManager,
	publisher Publisher,
	cache Cache,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:       source,
		scholarships: scholarships,
		syncState:    syncState,
		txManager:    txManager,
		publisher:    publisher,
		cache:        cache,
		logger:       logger.With("source", source.ID()),
		config:       cfg,
	}
}

func (s *SyncService) SourceID() string {
	return s.source.ID()
}

// Sync pulls the upstream listing and stores new and changed scholarships.
// When the fetch fails part way, the pages already fetched are still synced
// and the fetch error is returned with the stats.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncStats, error) {
	startTime := time.Now()
	s.logger.Info("starting sync",
		"source_name", s.source.Name(),
		"max_pages", s.config.MaxPagesPerSync,
		"max_historical_days", s.config.MaxHistoricalDays,
	)

	batch, fetchErr := s.source.FetchScholarships(ctx, s.config.MaxPagesPerSync)
	if fetchErr != nil {
		if len(batch.Scholarships) == 0 {
			return nil, fmt.Errorf("fetch scholarships: %w", fetchErr)
		}
		s.logger.Warn("partial fetch, syncing what was received",
			"count", len(batch.Scholarships),
			"error", fetchErr,
		)
	}

	s.logger.Info("fetched scholarships from source",
		"count", len(batch.Scholarships),
		"invalid", batch.Invalid,
	)

	cutoffDate := time.Now().AddDate(0, 0, -s.config.MaxHistoricalDays)
	scholarships := s.filterByDate(batch.Scholarships, cutoffDate)
	s.logger.Debug("filtered by date", "remaining", len(scholarships))

	toSync, existing, err := s.filterForSync(ctx, scholarships)
	if err != nil {
		return nil, fmt.Errorf("filter for sync: %w", err)
	}

	s.logger.Info("scholarships to sync", "count", len(toSync))

	stats := &domain.SyncStats{
		SourceID: s.source.ID(),
		Fetched:  len(scholarships),
		Skipped:  len(scholarships) - len(toSync),
		Invalid:  batch.Invalid,
	}

	var lastID string
	for i := range toSync {
		sch := &toSync[i]
		_, known := existing[sch.ID]
		isNew := !known

		if err := s.saveScholarship(ctx, sch); err != nil {
			s.logger.Error("failed to save scholarship",
				"external_id", sch.ID,
				"error", err,
			)
			stats.Errors++
			continue
		}
		lastID = sch.ID

		if s.publisher != nil {
			if err := s.publisher.PublishScholarship(ctx, sch, isNew); err != nil {
				s.logger.Warn("failed to publish scholarship",
					"external_id", sch.ID,
					"error", err,
				)
				stats.Errors++
			} else {
				stats.Published++
			}
		}

		if isNew {
			stats.New++
		} else {
			stats.Updated++
		}
	}

	if stats.New+stats.Updated > 0 {
		s.invalidateCache(ctx)
	}

	if err := s.updateSyncState(ctx, stats, lastID); err != nil {
		return stats, fmt.Errorf("update sync state: %w", err)
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("sync completed",
		"new", stats.New,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"invalid", stats.Invalid,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	if fetchErr != nil {
		return stats, fmt.Errorf("fetch scholarships: %w", fetchErr)
	}
	return stats, nil
}

// filterByDate drops records last updated before cutoff. Records without an
// update stamp are kept.
func (s *SyncService) filterByDate(scholarships []domain.Scholarship, cutoff time.Time) []domain.Scholarship {
	var filtered []domain.Scholarship
	for _, sch := range scholarships {
		if sch.UpdatedAt == nil || sch.UpdatedAt.After(cutoff) {
			filtered = append(filtered, sch)
		}
	}
	return filtered
}

// filterForSync keeps unknown records and known ones whose update stamp moved
// forward. It also returns the stored stamps for the new/update decision.
func (s *SyncService) filterForSync(ctx context.Context, scholarships []domain.Scholarship) ([]domain.Scholarship, map[string]time.Time, error) {
	if len(scholarships) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(scholarships))
	for i, sch := range scholarships {
		ids[i] = sch.ID
	}

	existing, err := s.scholarships.GetExistingBySourceAndIDs(ctx, s.source.ID(), ids)
	if err != nil {
		return nil, nil, err
	}

	var toSync []domain.Scholarship
	for _, sch := range scholarships {
		storedUpdatedAt, exists := existing[sch.ID]

		if !exists {
			toSync = append(toSync, sch)
		} else if sch.UpdatedAt != nil && sch.UpdatedAt.After(storedUpdatedAt) {
			toSync = append(toSync, sch)
		}
	}

	return toSync, existing, nil
}

func (s *SyncService) saveScholarship(ctx context.Context, sch *domain.Scholarship) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.scholarships.Upsert(txCtx, sch); err != nil {
			return fmt.Errorf("upsert scholarship: %w", err)
		}
		return nil
	})
}

func (s *SyncService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, SnapshotKey); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache", "error", err)
	}
}

func (s *SyncService) updateSyncState(ctx context.Context, stats *domain.SyncStats, lastID string) error {
	state, err := s.syncState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastSyncedAt = time.Now()
	state.TotalSynced += int64(stats.New + stats.Updated)
	if lastID != "" {
		state.LastScholarshipID = lastID
	}

	return s.syncState.Update(ctx, state)
}
