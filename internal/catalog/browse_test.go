package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_catalog/internal/domain"
)

func TestBrowse_FilterSortResolve(t *testing.T) {
	c := New(Settings{Regions: DefaultRegions()})
	records := []domain.Scholarship{
		{ID: "1", Slug: "daad", Title: "DAAD", Country: "Germany", Deadline: at("2024-09-01"), OfficialLink: "https://daad.example"},
		{ID: "2", Title: "Chevening", Country: "UK", Deadline: at("2024-07-01"), SourceLink: "https://src.example/2"},
		{ID: "3", Title: "Fulbright", Country: "USA", Deadline: at("2024-06-15")},
		{ID: "4", Title: "Erasmus", Country: "france", Deadline: at("2024-01-01"), OfficialLink: "https://erasmus.example"},
	}

	got := c.Browse(records, Query{
		Filter: FilterSpec{Type: FilterRegion, Region: "europe"},
		Sort:   SortDeadline,
	}, *at("2024-06-01"))

	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, LabelDeadlinePassed, got[0].Resolution.LinkLabel)
	assert.Equal(t, "/scholarship/4", got[0].Path)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, LabelSourceLink, got[1].Resolution.LinkLabel)
	assert.Equal(t, "1", got[2].ID)
	assert.Equal(t, "/daad", got[2].Path)
	assert.Equal(t, 92, got[2].Resolution.DaysUntilDeadline)
}

func TestBrowse_SearchNarrowsBeforeFilter(t *testing.T) {
	c := New(Settings{})
	records := []domain.Scholarship{
		{ID: "1", Title: "AI Fellowship", Deadline: at("2024-07-01")},
		{ID: "2", Title: "Arts Grant", Deadline: at("2024-07-01")},
	}

	got := c.Browse(records, Query{Search: "fellowship", Filter: FilterSpec{Type: FilterUpcoming}}, *at("2024-06-01"))

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDashboard(t *testing.T) {
	c := New(Settings{})
	records := []domain.Scholarship{
		{PostedAt: at("2024-06-01"), Deadline: at("2024-07-01")},
		{PostedAt: at("2024-06-03"), Deadline: at("2024-05-01")},
		{Deadline: at("2024-06-10")},
	}
	now := *at("2024-06-03T12:00")

	d := c.Dashboard(records, DashboardQuery{Field: FieldPosted, Granularity: Daily}, now)

	assert.Equal(t, now, d.GeneratedAt)
	assert.Equal(t, 3, d.Stats.Total)
	assert.Equal(t, 1, d.Stats.TodayUploads)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03"}, keys(d.Series))
	assert.Equal(t, 1, d.Series.Skipped)

	ranged := c.Dashboard(records, DashboardQuery{Field: FieldPosted, Granularity: Monthly, From: at("2024-05-01"), To: at("2024-06-30")}, now)
	assert.Equal(t, []string{"2024-05", "2024-06"}, keys(ranged.Series))
	assert.Equal(t, []int{0, 2}, counts(ranged.Series))

	fromOnly := c.Dashboard(records, DashboardQuery{Field: FieldPosted, Granularity: Daily, From: at("2024-06-02")}, now)
	assert.Equal(t, []string{"2024-06-02", "2024-06-03"}, keys(fromOnly.Series))
	assert.Equal(t, []int{0, 1}, counts(fromOnly.Series))
	assert.Equal(t, 2, fromOnly.Series.Skipped)
}

func TestFind(t *testing.T) {
	records := []domain.Scholarship{
		{ID: "10", Slug: "first"},
		{ID: "first"},
		{ID: "20"},
	}

	r, ok := Find(records, "first")
	require.True(t, ok)
	assert.Equal(t, "10", r.ID)

	r, ok = Find(records, "20")
	require.True(t, ok)
	assert.Equal(t, "20", r.ID)

	_, ok = Find(records, "missing")
	assert.False(t, ok)
}
