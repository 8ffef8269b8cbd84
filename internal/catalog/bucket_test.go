package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship_catalog/internal/domain"
)

func TestBucketize_SameDayEventsShareBucket(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("2024-03-01T09:00", "2024-03-01T22:00"), FieldPosted, Daily)

	require.Len(t, series.Buckets, 1)
	assert.Equal(t, Bucket{Key: "2024-03-01", Label: "2024-03-01", Count: 2}, series.Buckets[0])
	assert.Zero(t, series.Skipped)
}

func TestBucketize_EmptyInput(t *testing.T) {
	c := New(Settings{})

	for _, g := range []Granularity{Daily, Weekly, Monthly, Yearly} {
		series := c.Bucketize(nil, FieldPosted, g)
		assert.Empty(t, series.Buckets, g)
		assert.Zero(t, series.Skipped, g)
	}
}

func TestBucketize_MissingTimestampsAreSkipped(t *testing.T) {
	c := New(Settings{})
	records := posted("2024-03-01", "", "2024-03-02", "")

	for _, g := range []Granularity{Daily, Weekly, Monthly, Yearly} {
		series := c.Bucketize(records, FieldPosted, g)
		assert.Equal(t, 2, series.Total(), g)
		assert.Equal(t, 2, series.Skipped, g)
	}
}

func TestBucketize_FillsGapsInsideObservedRange(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("2024-03-03", "2024-03-01"), FieldPosted, Daily)

	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03"}, keys(series))
	assert.Equal(t, []int{1, 0, 1}, counts(series))
}

func TestBucketize_WeeklyUsesISOWeeks(t *testing.T) {
	c := New(Settings{})

	// 2024-12-29 is a Sunday in 2024-W52; the next day opens 2025-W01.
	series := c.Bucketize(posted("2024-12-29", "2024-12-30", "2025-01-05"), FieldPosted, Weekly)

	assert.Equal(t, []string{"2024-W52", "2025-W01"}, keys(series))
	assert.Equal(t, []int{1, 2}, counts(series))
	assert.Equal(t, "Week 52, 2024", series.Buckets[0].Label)
}

func TestBucketize_Monthly(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("2024-01-15", "2024-03-02", "2024-01-31"), FieldPosted, Monthly)

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, keys(series))
	assert.Equal(t, []int{2, 0, 1}, counts(series))
	assert.Equal(t, "Jan 2024", series.Buckets[0].Label)
}

func TestBucketize_Yearly(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("2024-06-01", "2022-01-01"), FieldPosted, Yearly)

	assert.Equal(t, []string{"2022", "2023", "2024"}, keys(series))
	assert.Equal(t, []int{1, 0, 1}, counts(series))
}

func TestBucketize_KeysStrictlyIncreasing(t *testing.T) {
	c := New(Settings{})
	records := posted("2023-11-30", "2024-02-29", "2023-12-31", "2024-01-01", "2024-02-01", "2023-12-25")

	for _, g := range []Granularity{Daily, Weekly, Monthly, Yearly} {
		series := c.Bucketize(records, FieldPosted, g)
		require.NotEmpty(t, series.Buckets, g)
		for i := 1; i < len(series.Buckets); i++ {
			assert.Less(t, series.Buckets[i-1].Key, series.Buckets[i].Key, g)
		}
		assert.Equal(t, len(records), series.Total(), g)
	}
}

func TestBucketize_UsesConfiguredTimezone(t *testing.T) {
	c := New(Settings{Location: time.FixedZone("UTC+9", 9*60*60)})

	series := c.Bucketize(posted("2024-03-01T20:00"), FieldPosted, Daily)

	assert.Equal(t, []string{"2024-03-02"}, keys(series))
}

func TestBucketize_ByDeadline(t *testing.T) {
	c := New(Settings{})
	records := []domain.Scholarship{
		{Deadline: at("2024-05-01"), PostedAt: at("2024-01-01")},
		{Deadline: at("2024-05-01")},
	}

	series := c.Bucketize(records, FieldDeadline, Monthly)

	assert.Equal(t, []string{"2024-05"}, keys(series))
	assert.Equal(t, []int{2}, counts(series))
}

func TestBucketizeRange_SynthesizesRequestedPeriods(t *testing.T) {
	c := New(Settings{})
	records := posted("2024-03-01", "2024-03-05")

	series := c.BucketizeRange(records, FieldPosted, Daily, *at("2024-02-28"), *at("2024-03-02"))

	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, keys(series))
	assert.Equal(t, []int{0, 0, 1, 0}, counts(series))
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketizeRange_InvertedRange(t *testing.T) {
	c := New(Settings{})

	series := c.BucketizeRange(posted("2024-03-01"), FieldPosted, Daily, *at("2024-03-02"), *at("2024-03-01"))

	assert.Empty(t, series.Buckets)
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketizeRange_CapsHugeRange(t *testing.T) {
	c := New(Settings{})
	records := posted("0500-06-01", "9999-12-30")

	series := c.BucketizeRange(records, FieldPosted, Daily, *at("0001-01-01"), *at("9999-12-31"))

	require.Len(t, series.Buckets, MaxDailyBuckets)
	assert.True(t, series.Truncated)
	assert.Equal(t, "9999-12-31", series.Buckets[len(series.Buckets)-1].Key)
	assert.Equal(t, 1, series.Total())
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketize_ObservedSpanIsCapped(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("1800-01-10", "2024-01-10"), FieldPosted, Monthly)

	require.Len(t, series.Buckets, MaxMonthlyBuckets)
	assert.True(t, series.Truncated)
	assert.Equal(t, "1924-02", series.Buckets[0].Key)
	assert.Equal(t, "2024-01", series.Buckets[len(series.Buckets)-1].Key)
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketize_SmallSpanNotTruncated(t *testing.T) {
	c := New(Settings{})

	series := c.Bucketize(posted("2024-03-01", "2024-03-03"), FieldPosted, Daily)

	assert.False(t, series.Truncated)
	assert.Len(t, series.Buckets, 3)
}

func TestBucketizeWindow_FromOnly(t *testing.T) {
	c := New(Settings{})
	records := posted("2024-02-27", "2024-03-02", "2024-03-04")

	series := c.BucketizeWindow(records, FieldPosted, Daily, at("2024-03-01"), nil)

	assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"}, keys(series))
	assert.Equal(t, []int{0, 1, 0, 1}, counts(series))
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketizeWindow_ToOnly(t *testing.T) {
	c := New(Settings{})
	records := posted("2024-02-27", "2024-03-02", "2024-03-04")

	series := c.BucketizeWindow(records, FieldPosted, Daily, nil, at("2024-03-02"))

	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, keys(series))
	assert.Equal(t, []int{1, 0, 0, 0, 1}, counts(series))
	assert.Equal(t, 1, series.Skipped)
}

func TestBucketizeWindow_OneBoundWithoutMatches(t *testing.T) {
	c := New(Settings{})

	series := c.BucketizeWindow(posted("2024-01-01"), FieldPosted, Daily, at("2024-03-01"), nil)

	assert.Empty(t, series.Buckets)
	assert.Equal(t, 1, series.Skipped)
}

func TestPeriodCount(t *testing.T) {
	c := New(Settings{})

	assert.Equal(t, 366, c.PeriodCount(Daily, *at("2024-01-01"), *at("2024-12-31")))
	assert.Equal(t, 3652059, c.PeriodCount(Daily, *at("0001-01-01"), *at("9999-12-31")))
	assert.Equal(t, 2, c.PeriodCount(Weekly, *at("2024-01-01"), *at("2024-01-14")))
	assert.Equal(t, 3, c.PeriodCount(Weekly, *at("2024-01-07"), *at("2024-01-15")))
	assert.Equal(t, 4, c.PeriodCount(Monthly, *at("2023-11-15"), *at("2024-02-01")))
	assert.Equal(t, 2, c.PeriodCount(Yearly, *at("2023-12-31"), *at("2024-01-01")))
	assert.Zero(t, c.PeriodCount(Daily, *at("2024-01-02"), *at("2024-01-01")))
	assert.Zero(t, c.PeriodCount(Granularity("hourly"), *at("2024-01-01"), *at("2024-01-02")))
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, Weekly, g)

	g, err = ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Daily, g)

	_, err = ParseGranularity("hourly")
	assert.Error(t, err)
}
