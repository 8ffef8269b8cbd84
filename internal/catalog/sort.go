package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"scholarship_catalog/internal/domain"
)

type SortKey string

const (
	SortDeadline SortKey = "deadline"
	SortNewest   SortKey = "newest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDeadline, nil
	case SortDeadline, SortNewest:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Sort returns a stably sorted copy of records. Records without the sort date
// go last in input order. An unknown key leaves the order unchanged.
func Sort(records []domain.Scholarship, key SortKey) []domain.Scholarship {
	out := slices.Clone(records)
	switch key {
	case SortDeadline:
		slices.SortStableFunc(out, func(a, b domain.Scholarship) int {
			return compareDates(a.Deadline, b.Deadline, false)
		})
	case SortNewest:
		slices.SortStableFunc(out, func(a, b domain.Scholarship) int {
			return compareDates(a.Posted(), b.Posted(), true)
		})
	}
	return out
}

func compareDates(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if desc {
		return b.Compare(*a)
	}
	return a.Compare(*b)
}
