package catalog

import (
	"time"

	"scholarship_catalog/internal/domain"
)

func at(value string) *time.Time {
	layouts := []string{"2006-01-02T15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	panic("bad test time " + value)
}

func posted(values ...string) []domain.Scholarship {
	records := make([]domain.Scholarship, len(values))
	for i, v := range values {
		if v != "" {
			records[i].PostedAt = at(v)
		}
	}
	return records
}

func keys(s Series) []string {
	out := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Key
	}
	return out
}

func counts(s Series) []int {
	out := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = b.Count
	}
	return out
}

func ids(records []domain.Scholarship) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
