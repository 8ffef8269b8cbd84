package catalog

import (
	"fmt"
	"strings"
	"time"

	"scholarship_catalog/internal/domain"
)

type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly, Yearly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// Bucket is one period of a chart series.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Series is an ordered run of buckets. Skipped counts the records left out
// because the bucketed date was missing, fell outside a requested range, or
// fell before the oldest bucket kept when the span was truncated.
type Series struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"buckets"`
	Skipped     int         `json:"skipped"`
	Truncated   bool        `json:"truncated"`
}

// Longest series emitted per granularity. Wider spans keep the most recent
// periods.
const (
	MaxDailyBuckets   = 3660
	MaxWeeklyBuckets  = 520
	MaxMonthlyBuckets = 1200
	MaxYearlyBuckets  = 200
)

// MaxBuckets returns the bucket cap for g, or 0 for an unknown granularity.
func MaxBuckets(g Granularity) int {
	switch g {
	case Daily:
		return MaxDailyBuckets
	case Weekly:
		return MaxWeeklyBuckets
	case Monthly:
		return MaxMonthlyBuckets
	case Yearly:
		return MaxYearlyBuckets
	default:
		return 0
	}
}

// Total is the number of records that landed in a bucket.
func (s Series) Total() int {
	n := 0
	for _, b := range s.Buckets {
		n += b.Count
	}
	return n
}

// period describes one granularity over civil (UTC midnight) dates.
type period struct {
	start func(time.Time) time.Time
	shift func(time.Time, int) time.Time
	// count is the number of periods from first to last inclusive.
	count func(first, last time.Time) int
	key   func(time.Time) string
	label func(time.Time) string
}

var periods = map[Granularity]period{
	Daily: {
		start: func(t time.Time) time.Time { return t },
		shift: func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) },
		count: func(first, last time.Time) int { return civilDays(first, last) + 1 },
		key:   func(t time.Time) string { return t.Format("2006-01-02") },
		label: func(t time.Time) string { return t.Format("2006-01-02") },
	},
	Weekly: {
		start: func(t time.Time) time.Time {
			// ISO weeks start on Monday.
			return t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
		},
		shift: func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) },
		count: func(first, last time.Time) int { return civilDays(first, last)/7 + 1 },
		key: func(t time.Time) string {
			y, w := t.ISOWeek()
			return fmt.Sprintf("%04d-W%02d", y, w)
		},
		label: func(t time.Time) string {
			y, w := t.ISOWeek()
			return fmt.Sprintf("Week %d, %d", w, y)
		},
	},
	Monthly: {
		start: func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC) },
		shift: func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) },
		count: func(first, last time.Time) int {
			return (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
		},
		key:   func(t time.Time) string { return t.Format("2006-01") },
		label: func(t time.Time) string { return t.Format("Jan 2006") },
	},
	Yearly: {
		start: func(t time.Time) time.Time { return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC) },
		shift: func(t time.Time, n int) time.Time { return t.AddDate(n, 0, 0) },
		count: func(first, last time.Time) int { return last.Year() - first.Year() + 1 },
		key:   func(t time.Time) string { return t.Format("2006") },
		label: func(t time.Time) string { return t.Format("2006") },
	},
}

// civilDays counts whole days between two UTC-midnight dates. Works on Unix
// seconds since time.Duration saturates past ~292 years.
func civilDays(first, last time.Time) int {
	return int((last.Unix() - first.Unix()) / 86400)
}

// PeriodCount is the number of g periods touched by the window [from, to] in
// the catalog timezone, or 0 when the window is inverted or g is unknown.
func (c *Catalog) PeriodCount(g Granularity, from, to time.Time) int {
	p, ok := periods[g]
	if !ok {
		return 0
	}
	lo, hi := c.civil(from), c.civil(to)
	if hi.Before(lo) {
		return 0
	}
	return p.count(p.start(lo), p.start(hi))
}

// Bucketize groups records by the chosen date field. Buckets cover the span
// from the first to the last observed period; empty periods in between are
// emitted with a zero count.
func (c *Catalog) Bucketize(records []domain.Scholarship, field DateField, g Granularity) Series {
	return c.bucketize(records, field, g, nil, nil)
}

// BucketizeRange is Bucketize over an explicit [from, to] window: every period
// touching the window is emitted and records outside it are skipped.
func (c *Catalog) BucketizeRange(records []domain.Scholarship, field DateField, g Granularity, from, to time.Time) Series {
	return c.bucketize(records, field, g, &from, &to)
}

// BucketizeWindow accepts either bound of the window as nil. A missing side
// is clamped to the first or last observed period.
func (c *Catalog) BucketizeWindow(records []domain.Scholarship, field DateField, g Granularity, from, to *time.Time) Series {
	return c.bucketize(records, field, g, from, to)
}

func (c *Catalog) bucketize(records []domain.Scholarship, field DateField, g Granularity, from, to *time.Time) Series {
	series := Series{Granularity: g, Buckets: []Bucket{}}
	p, ok := periods[g]
	if !ok {
		return series
	}

	var lo, hi time.Time
	if from != nil {
		lo = c.civil(*from)
	}
	if to != nil {
		hi = c.civil(*to)
	}
	if from != nil && to != nil && hi.Before(lo) {
		series.Skipped = len(records)
		return series
	}

	counts := make(map[time.Time]int)
	var first, last time.Time
	for i := range records {
		ts := field.value(&records[i])
		if ts == nil {
			series.Skipped++
			continue
		}
		day := c.civil(*ts)
		if (from != nil && day.Before(lo)) || (to != nil && day.After(hi)) {
			series.Skipped++
			continue
		}
		start := p.start(day)
		if len(counts) == 0 || start.Before(first) {
			first = start
		}
		if len(counts) == 0 || start.After(last) {
			last = start
		}
		counts[start]++
	}

	switch {
	case from != nil && to != nil:
		first, last = p.start(lo), p.start(hi)
	case len(counts) == 0:
		return series
	case from != nil:
		first = p.start(lo)
	case to != nil:
		last = p.start(hi)
	}

	if limit := MaxBuckets(g); p.count(first, last) > limit {
		first = p.shift(last, -(limit - 1))
		series.Truncated = true
		for t, n := range counts {
			if t.Before(first) {
				series.Skipped += n
			}
		}
	}

	series.Buckets = make([]Bucket, 0, p.count(first, last))
	for t := first; !t.After(last); t = p.shift(t, 1) {
		series.Buckets = append(series.Buckets, Bucket{
			Key:   p.key(t),
			Label: p.label(t),
			Count: counts[t],
		})
	}
	return series
}
