package handlers

import "time"

// Date and time strings in the display zone, e.g. "07/11/2026 08:00".
func fmtDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02/01/2006 15:04")
}

// ISO date string, e.g. "2006-01-02"
func fmtISODate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// parseLocalTime reads "2006-01-02T15:04", "2006-01-02 15:04" or RFC 3339.
// Zone-less inputs are taken in loc.
func parseLocalTime(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
