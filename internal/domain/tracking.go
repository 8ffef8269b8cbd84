package domain

import "time"

type TrackingKind string

const (
	TrackOutboundLink TrackingKind = "outbound_link"
	TrackSearchQuery  TrackingKind = "search_query"
)

// TrackingEvent is handed to the click-tracking collaborator. It carries the
// (identifier, title, resolved URL) triple for outbound links, or the raw
// query for searches.
type TrackingEvent struct {
	ID            string       `json:"id"`
	Kind          TrackingKind `json:"kind"`
	ScholarshipID string       `json:"scholarship_id,omitempty"`
	Title         string       `json:"title,omitempty"`
	URL           string       `json:"url,omitempty"`
	Query         string       `json:"query,omitempty"`
	Results       int          `json:"results,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}
