package catalog

import (
	"strings"
	"time"

	"scholarship_catalog/internal/domain"
)

type LinkLabel string

const (
	LabelOfficialApply  LinkLabel = "official_apply"
	LabelSourceLink     LinkLabel = "source_link"
	LabelApplyNow       LinkLabel = "apply_now"
	LabelDeadlinePassed LinkLabel = "deadline_passed"
)

// Resolution is the per-record presentation decision. Link may be set while
// Actionable is false: an expired record still shows its link but must not
// be clickable.
type Resolution struct {
	DaysUntilDeadline int       `json:"days_until_deadline"`
	DeadlineKnown     bool      `json:"deadline_known"`
	IsExpired         bool      `json:"is_expired"`
	Link              string    `json:"link,omitempty"`
	LinkLabel         LinkLabel `json:"link_label"`
	Actionable        bool      `json:"actionable"`
}

// Resolve picks the action link and deadline state for r at now. The official
// link wins over the source link whenever it is present.
func (c *Catalog) Resolve(r domain.Scholarship, now time.Time) Resolution {
	var res Resolution
	if r.Deadline != nil {
		res.DeadlineKnown = true
		res.DaysUntilDeadline = c.daysBetween(now, *r.Deadline)
		res.IsExpired = res.DaysUntilDeadline < 0
	}

	official := strings.TrimSpace(r.OfficialLink)
	fallback := strings.TrimSpace(r.SourceLink)

	switch {
	case res.IsExpired:
		res.Link = firstNonEmpty(official, fallback)
		res.LinkLabel = LabelDeadlinePassed
	case official != "":
		res.Link = official
		res.LinkLabel = LabelOfficialApply
		res.Actionable = true
	case fallback != "":
		res.Link = fallback
		res.LinkLabel = LabelSourceLink
		res.Actionable = true
	default:
		res.LinkLabel = LabelApplyNow
	}
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
