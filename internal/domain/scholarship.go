package domain

import "time"

// Scholarship is the canonical record every component works with. Upstream
// aliases are resolved before a value of this type is built.
type Scholarship struct {
	ID              string     `json:"id" db:"external_id"`
	SourceID        string     `json:"source_id" db:"source_id"`
	Slug            string     `json:"slug,omitempty" db:"slug"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description,omitempty" db:"description"`
	Country         string     `json:"country,omitempty" db:"country"`
	DegreeOffered   string     `json:"degree_offered,omitempty" db:"degree_offered"`
	University      string     `json:"university,omitempty" db:"university"`
	Provider        string     `json:"provider,omitempty" db:"provider"`
	ProgramDuration string     `json:"program_duration,omitempty" db:"program_duration"`
	OfficialLink    string     `json:"official_link,omitempty" db:"official_link"`
	SourceLink      string     `json:"source_link,omitempty" db:"source_link"`
	Deadline        *time.Time `json:"deadline,omitempty" db:"deadline"`
	PostedAt        *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	CreatedAt       *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Posted returns the date the record was published, falling back to its
// creation date.
func (s *Scholarship) Posted() *time.Time {
	if s.PostedAt != nil {
		return s.PostedAt
	}
	return s.CreatedAt
}

type SyncState struct {
	ID                int64     `db:"id"`
	SourceID          string    `db:"source_id"`
	LastSyncedAt      time.Time `db:"last_synced_at"`
	LastScholarshipID string    `db:"last_scholarship_id"`
	TotalSynced       int64     `db:"total_synced"`
}
