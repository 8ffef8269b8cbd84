package catalog

import (
	"time"

	"scholarship_catalog/internal/domain"
)

// Query is one list request: free-text search, then the filter, then the
// sort order.
type Query struct {
	Search string
	Filter FilterSpec
	Sort   SortKey
}

// Listing is a record ready for display.
type Listing struct {
	domain.Scholarship
	Resolution Resolution `json:"resolution"`
	Path       string     `json:"path"`
}

// Browse runs the list pipeline over a snapshot.
func (c *Catalog) Browse(records []domain.Scholarship, q Query, now time.Time) []Listing {
	matched := c.Filter(Search(records, q.Search), q.Filter, now)
	sorted := Sort(matched, q.Sort)

	listings := make([]Listing, len(sorted))
	for i, r := range sorted {
		listings[i] = c.Present(r, now)
	}
	return listings
}

// Present resolves a single record for display.
func (c *Catalog) Present(r domain.Scholarship, now time.Time) Listing {
	return Listing{
		Scholarship: r,
		Resolution:  c.Resolve(r, now),
		Path:        Path(r),
	}
}

// Dashboard is the analytics view: quick stats plus one chart series.
type Dashboard struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Stats       QuickStats `json:"stats"`
	Series      Series     `json:"series"`
}

// DashboardQuery selects the chart. From and To bound it inclusively; either
// may be nil for an open side.
type DashboardQuery struct {
	Field       DateField
	Granularity Granularity
	From        *time.Time
	To          *time.Time
}

func (c *Catalog) Dashboard(records []domain.Scholarship, q DashboardQuery, now time.Time) Dashboard {
	return Dashboard{
		GeneratedAt: now,
		Stats:       c.ComputeStats(records, now),
		Series:      c.BucketizeWindow(records, q.Field, q.Granularity, q.From, q.To),
	}
}

// Find returns the record addressed by ref, which is either a slug or an id.
func Find(records []domain.Scholarship, ref string) (domain.Scholarship, bool) {
	for _, r := range records {
		if r.Slug != "" && r.Slug == ref {
			return r, true
		}
	}
	for _, r := range records {
		if r.ID == ref {
			return r, true
		}
	}
	return domain.Scholarship{}, false
}
