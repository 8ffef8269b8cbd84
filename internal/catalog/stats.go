package catalog

import (
	"time"

	"scholarship_catalog/internal/domain"
)

// QuickStats summarises upload activity and deadline state at a point in time.
type QuickStats struct {
	TodayUploads     int `json:"today_uploads"`
	YesterdayUploads int `json:"yesterday_uploads"`
	ThisWeekUploads  int `json:"this_week_uploads"`
	ThisMonthUploads int `json:"this_month_uploads"`
	Total            int `json:"total"`
	Active           int `json:"active"`
	Expired          int `json:"expired"`
	Urgent           int `json:"urgent"`
	// UnknownDeadline counts records kept out of Active/Expired.
	UnknownDeadline int `json:"unknown_deadline"`
}

// ComputeStats counts uploads by the posted date and partitions records by
// deadline relative to now. The week is a rolling seven-day window ending
// today; the month is the calendar month of now.
func (c *Catalog) ComputeStats(records []domain.Scholarship, now time.Time) QuickStats {
	var stats QuickStats
	today := c.civil(now)
	yesterday := today.AddDate(0, 0, -1)
	weekStart := today.AddDate(0, 0, -6)

	for i := range records {
		r := &records[i]
		stats.Total++

		if posted := r.Posted(); posted != nil {
			day := c.civil(*posted)
			if day.Equal(today) {
				stats.TodayUploads++
			}
			if day.Equal(yesterday) {
				stats.YesterdayUploads++
			}
			if !day.Before(weekStart) && !day.After(today) {
				stats.ThisWeekUploads++
			}
			if day.Year() == today.Year() && day.Month() == today.Month() {
				stats.ThisMonthUploads++
			}
		}

		if r.Deadline == nil {
			stats.UnknownDeadline++
			continue
		}
		days := c.daysBetween(now, *r.Deadline)
		if days < 0 {
			stats.Expired++
			continue
		}
		stats.Active++
		if days <= c.urgentDays {
			stats.Urgent++
		}
	}
	return stats
}
