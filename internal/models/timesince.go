package models

import (
	"fmt"
	"time"
)

// TimeSince renders the coarse "3 hours ago" form used next to articles and
// comments. Months are 30 days and years 365.
func TimeSince(now time.Time, t *time.Time) string {
	if t == nil || t.IsZero() {
		return "unpublished"
	}
	diff := now.Sub(*t)

	seconds := diff.Seconds()
	if seconds < 60 {
		if seconds < 5 {
			return "just now"
		}
		return fmt.Sprintf("%d seconds ago", int(seconds))
	}

	minutes := int(diff.Minutes())
	if minutes < 60 {
		return plural(minutes, "min")
	}

	hours := int(diff.Hours())
	if hours < 24 {
		return plural(hours, "hour")
	}

	days := hours / 24
	if days < 30 {
		return plural(days, "day")
	}

	months := days / 30
	if months < 12 {
		return plural(months, "month")
	}

	return plural(days/365, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
