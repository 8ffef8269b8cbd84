package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"scholarship_catalog/internal/domain"
)

type ScholarshipStore interface {
	Upsert(ctx context.Context, sch *domain.Scholarship) (int64, error)
	GetExistingBySourceAndIDs(ctx context.Context, sourceID string, ids []string) (map[string]time.Time, error)
}

type SnapshotStore interface {
	ListAll(ctx context.Context) ([]domain.Scholarship, error)
}

type SyncStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)
	Update(ctx context.Context, state *domain.SyncState) error
}

type Source interface {
	ID() string
	Name() string
	FetchScholarships(ctx context.Context, maxPages int) (domain.Batch, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishScholarship(ctx context.Context, sch *domain.Scholarship, isNew bool) error
	Close() error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type Tracker interface {
	Track(event domain.TrackingEvent)
}

type CacheRecorder interface {
	CacheHit()
	CacheMiss()
}
