// Package catalog holds the scholarship data-processing core: time bucketing,
// quick stats, criteria filtering, sorting and per-record link, deadline and
// path resolution.
//
// Everything here is a pure function of its arguments. The reference time is
// always passed in explicitly, so a Catalog is safe for concurrent use and
// needs no clock fakes in tests.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"scholarship_catalog/internal/domain"
)

const DefaultUrgentWithinDays = 7

// Settings configures a Catalog. The zero value is usable: UTC, the default
// urgency threshold and an empty region table.
type Settings struct {
	Location         *time.Location
	UrgentWithinDays int
	Regions          RegionMap
}

type Catalog struct {
	loc        *time.Location
	urgentDays int
	regions    RegionMap
}

func New(s Settings) *Catalog {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	urgent := s.UrgentWithinDays
	if urgent <= 0 {
		urgent = DefaultUrgentWithinDays
	}
	return &Catalog{
		loc:        loc,
		urgentDays: urgent,
		regions:    s.Regions,
	}
}

func (c *Catalog) Regions() RegionMap {
	return c.regions
}

func (c *Catalog) Location() *time.Location {
	return c.loc
}

// DateField names the record date a bucketing or window operation reads.
type DateField string

const (
	FieldPosted   DateField = "posted"
	FieldCreated  DateField = "created"
	FieldUpdated  DateField = "updated"
	FieldDeadline DateField = "deadline"
)

func ParseDateField(s string) (DateField, error) {
	switch f := DateField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FieldPosted, nil
	case FieldPosted, FieldCreated, FieldUpdated, FieldDeadline:
		return f, nil
	default:
		return "", fmt.Errorf("unknown date field %q", s)
	}
}

func (f DateField) value(s *domain.Scholarship) *time.Time {
	switch f {
	case FieldCreated:
		return s.CreatedAt
	case FieldUpdated:
		return s.UpdatedAt
	case FieldDeadline:
		return s.Deadline
	default:
		return s.Posted()
	}
}

// civil maps t to midnight UTC of its calendar date in the configured zone.
// Differences between civil dates are exact multiples of 24h, DST or not.
func (c *Catalog) civil(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from from to to; negative when to is earlier.
func (c *Catalog) daysBetween(from, to time.Time) int {
	return civilDays(c.civil(from), c.civil(to))
}
