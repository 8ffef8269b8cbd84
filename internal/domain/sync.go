package domain

import "time"

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	SourceID  string
	Fetched   int
	New       int
	Updated   int
	Skipped   int
	Invalid   int
	Errors    int
	Published int
	Duration  time.Duration
}

// Batch is one fetch from an upstream source. Invalid counts records dropped
// because they lacked an identifier or title.
type Batch struct {
	Scholarships []Scholarship
	Invalid      int
}
