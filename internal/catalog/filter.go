package catalog

import (
	"errors"
	"strings"
	"time"

	"scholarship_catalog/internal/domain"
)

type FilterType string

const (
	FilterUpcoming FilterType = "upcoming"
	FilterCountry  FilterType = "country"
	FilterDegree   FilterType = "degree"
	FilterRegion   FilterType = "region"
)

// FilterSpec narrows a record list. Value is read for country and degree
// filters, Region for region filters. DateFrom and DateTo bound DateField
// inclusively; either may be nil for an open side.
type FilterSpec struct {
	Type      FilterType
	Value     string
	Region    string
	DateField DateField
	DateFrom  *time.Time
	DateTo    *time.Time
}

func (s FilterSpec) windowed() bool {
	return s.DateFrom != nil || s.DateTo != nil
}

// Validate rejects inverted date windows. Unknown filter types are accepted
// and pass everything through.
func (s FilterSpec) Validate() error {
	if s.DateFrom != nil && s.DateTo != nil && s.DateTo.Before(*s.DateFrom) {
		return errors.New("date window ends before it starts")
	}
	return nil
}

// Filter returns the records matching spec in their original order.
func (c *Catalog) Filter(records []domain.Scholarship, spec FilterSpec, now time.Time) []domain.Scholarship {
	out := make([]domain.Scholarship, 0, len(records))
	for i := range records {
		if c.matches(&records[i], spec, now) {
			out = append(out, records[i])
		}
	}
	return out
}

func (c *Catalog) matches(r *domain.Scholarship, spec FilterSpec, now time.Time) bool {
	if spec.windowed() && !c.inWindow(spec.DateField.value(r), spec.DateFrom, spec.DateTo) {
		return false
	}

	switch spec.Type {
	case FilterUpcoming:
		return r.Deadline != nil && c.daysBetween(now, *r.Deadline) >= 0
	case FilterCountry:
		return containsFold(r.Country, spec.Value)
	case FilterDegree:
		return containsFold(r.DegreeOffered, spec.Value)
	case FilterRegion:
		return c.regions.Contains(spec.Region, r.Country)
	default:
		return true
	}
}

func (c *Catalog) inWindow(ts, from, to *time.Time) bool {
	if ts == nil {
		return false
	}
	day := c.civil(*ts)
	if from != nil && day.Before(c.civil(*from)) {
		return false
	}
	if to != nil && day.After(c.civil(*to)) {
		return false
	}
	return true
}

// Search keeps records whose title, description, institution or country
// contain q, ignoring case. An empty q keeps everything.
func Search(records []domain.Scholarship, q string) []domain.Scholarship {
	q = strings.TrimSpace(q)
	out := make([]domain.Scholarship, 0, len(records))
	for _, r := range records {
		if q == "" ||
			containsFold(r.Title, q) ||
			containsFold(r.Description, q) ||
			containsFold(r.University, q) ||
			containsFold(r.Provider, q) ||
			containsFold(r.Country, q) {
			out = append(out, r)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
