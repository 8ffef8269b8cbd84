package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"scholarship_catalog/internal/cache"
	"scholarship_catalog/internal/catalog"
	"scholarship_catalog/internal/domain"
)

// SnapshotKey is the cache key of the full scholarship list.
const SnapshotKey = "snapshot"

var (
	ErrNotFound     = errors.New("scholarship not found")
	ErrInvalidQuery = errors.New("invalid query")
)

// BrowseService serves read requests from a snapshot of the store. The
// snapshot goes through the cache when one is configured.
type BrowseService struct {
	catalog  *catalog.Catalog
	store    SnapshotStore
	cache    Cache
	tracker  Tracker
	recorder CacheRecorder
	now      func() time.Time
	logger   *slog.Logger
}

// NewBrowseService builds the read side. cache, tracker and recorder may be
// nil; a nil clock means time.Now.
func NewBrowseService(
	cat *catalog.Catalog,
	store SnapshotStore,
	cache Cache,
	tracker Tracker,
	recorder CacheRecorder,
	clock func() time.Time,
	logger *slog.Logger,
) *BrowseService {
	if clock == nil {
		clock = time.Now
	}
	return &BrowseService{
		catalog:  cat,
		store:    store,
		cache:    cache,
		tracker:  tracker,
		recorder: recorder,
		now:      clock,
		logger:   logger.With("component", "browse"),
	}
}

func (s *BrowseService) List(ctx context.Context, q catalog.Query) ([]catalog.Listing, error) {
	if err := q.Filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	listings := s.catalog.Browse(records, q, s.now())

	if search := strings.TrimSpace(q.Search); search != "" {
		s.track(domain.TrackingEvent{
			Kind:    domain.TrackSearchQuery,
			Query:   search,
			Results: len(listings),
		})
	}

	return listings, nil
}

// Get finds a scholarship by slug or id.
func (s *BrowseService) Get(ctx context.Context, ref string) (catalog.Listing, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return catalog.Listing{}, ErrNotFound
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return catalog.Listing{}, err
	}

	r, ok := catalog.Find(records, ref)
	if !ok {
		return catalog.Listing{}, ErrNotFound
	}
	return s.catalog.Present(r, s.now()), nil
}

// Outbound resolves the apply link of a scholarship and records the click
// when the link is actionable.
func (s *BrowseService) Outbound(ctx context.Context, ref string) (catalog.Listing, error) {
	listing, err := s.Get(ctx, ref)
	if err != nil {
		return catalog.Listing{}, err
	}

	if listing.Resolution.Actionable {
		s.track(domain.TrackingEvent{
			Kind:          domain.TrackOutboundLink,
			ScholarshipID: listing.ID,
			Title:         listing.Title,
			URL:           listing.Resolution.Link,
		})
	}
	return listing, nil
}

func (s *BrowseService) Dashboard(ctx context.Context, q catalog.DashboardQuery) (catalog.Dashboard, error) {
	if q.From != nil && q.To != nil {
		if q.To.Before(*q.From) {
			return catalog.Dashboard{}, fmt.Errorf("%w: range ends before it starts", ErrInvalidQuery)
		}
		n := s.catalog.PeriodCount(q.Granularity, *q.From, *q.To)
		if limit := catalog.MaxBuckets(q.Granularity); n > limit {
			return catalog.Dashboard{}, fmt.Errorf("%w: range spans %d %s periods, limit is %d",
				ErrInvalidQuery, n, q.Granularity, limit)
		}
	}

	records, err := s.snapshot(ctx)
	if err != nil {
		return catalog.Dashboard{}, err
	}
	return s.catalog.Dashboard(records, q, s.now()), nil
}

// Regions lists the configured regions with their member countries.
func (s *BrowseService) Regions() map[string][]string {
	regions := s.catalog.Regions()
	out := make(map[string][]string, len(regions.Names()))
	for _, name := range regions.Names() {
		out[name] = regions.Countries(name)
	}
	return out
}

func (s *BrowseService) snapshot(ctx context.Context) ([]domain.Scholarship, error) {
	if s.cache != nil {
		var cached []domain.Scholarship
		err := s.cache.Get(ctx, SnapshotKey, &cached)
		switch {
		case err == nil:
			s.cacheHit()
			return cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.cacheMiss()
		default:
			s.cacheMiss()
			s.logger.Warn("snapshot cache read failed", "error", err)
		}
	}

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scholarships: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, SnapshotKey, records); err != nil {
			s.logger.Warn("snapshot cache write failed", "error", err)
		}
	}
	return records, nil
}

func (s *BrowseService) track(event domain.TrackingEvent) {
	if s.tracker != nil {
		s.tracker.Track(event)
	}
}

func (s *BrowseService) cacheHit() {
	if s.recorder != nil {
		s.recorder.CacheHit()
	}
}

func (s *BrowseService) cacheMiss() {
	if s.recorder != nil {
		s.recorder.CacheMiss()
	}
}
