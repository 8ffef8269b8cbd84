package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scholarship_catalog/internal/catalog"
	"scholarship_catalog/internal/domain"
)

// APIResponse is one page of the upstream listing endpoint.
type APIResponse struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}

type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Record is a scholarship as the upstream API sends it. Several concepts
// arrive under more than one key depending on when the row was written.
type Record struct {
	ID              flexibleID `json:"id" validate:"required"`
	Slug            string     `json:"slug"`
	Title           string     `json:"title" validate:"required"`
	Description     string     `json:"description"`
	Country         string     `json:"country"`
	HostCountry     string     `json:"host_country"`
	DegreeOffered   string     `json:"degree_offered"`
	University      string     `json:"university"`
	HostUniversity  string     `json:"host_university"`
	Provider        string     `json:"provider"`
	ProviderName    string     `json:"provider_name"`
	ProgramDuration string     `json:"program_duration"`
	OfficialLink    string     `json:"official_link" validate:"omitempty,url"`
	Link            string     `json:"link" validate:"omitempty,url"`
	SourceLink      string     `json:"source_link" validate:"omitempty,url"`
	Deadline        string     `json:"deadline"`
	PostAt          string     `json:"post_at"`
	PostedAt        string     `json:"posted_at"`
	CreatedAt       string     `json:"created_at"`
	UpdatedAt       string     `json:"updated_at"`
}

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseDate returns nil for empty or unparseable input; an unknown date is
// never replaced by a sentinel.
func parseDate(raw string, loc *time.Location) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// Normalize maps every known alias onto the canonical record. It returns the
// names of date fields that were present but could not be parsed.
func (r Record) Normalize(sourceID string, loc *time.Location) (domain.Scholarship, []string) {
	s := domain.Scholarship{
		ID:              string(r.ID),
		SourceID:        sourceID,
		Slug:            normalizeSlug(r.Slug),
		Title:           strings.TrimSpace(r.Title),
		Description:     strings.TrimSpace(r.Description),
		Country:         coalesce(r.Country, r.HostCountry),
		DegreeOffered:   strings.TrimSpace(r.DegreeOffered),
		University:      coalesce(r.University, r.HostUniversity),
		Provider:        coalesce(r.Provider, r.ProviderName),
		ProgramDuration: strings.TrimSpace(r.ProgramDuration),
		OfficialLink:    strings.TrimSpace(r.OfficialLink),
		SourceLink:      coalesce(r.Link, r.SourceLink),
	}

	var bad []string
	date := func(name, raw string) *time.Time {
		t, ok := parseDate(raw, loc)
		if !ok {
			bad = append(bad, name)
		}
		return t
	}

	s.Deadline = date("deadline", r.Deadline)
	s.PostedAt = date("post_at", coalesce(r.PostAt, r.PostedAt))
	s.CreatedAt = date("created_at", r.CreatedAt)
	s.UpdatedAt = date("updated_at", r.UpdatedAt)

	return s, bad
}

func (r *Record) clearLink(field string) {
	switch field {
	case "OfficialLink":
		r.OfficialLink = ""
	case "Link":
		r.Link = ""
	case "SourceLink":
		r.SourceLink = ""
	}
}

func normalizeSlug(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || catalog.IsValidSlug(raw) {
		return raw
	}
	return catalog.Slugify(raw)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
