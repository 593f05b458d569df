package leave

import "time"

// Date layouts the HR backend mixes freely across endpoints.
const (
	layoutISODateTime = "2006-01-02T15:04:05"
	layoutISODate     = "2006-01-02"
	layoutDayMonth    = "02-Jan-2006"
)

// parseRecordDate parses a history date accepting ISO datetime, ISO date and
// day-month-year layouts. Only the first 19 characters are considered so
// fractional seconds or timezone suffixes do not break the match.
func parseRecordDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if len(raw) > 19 {
		raw = raw[:19]
	}
	for _, layout := range []string{layoutISODateTime, layoutISODate, layoutDayMonth} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseProfileDate parses employee profile dates (joining, anniversary,
// probation), which arrive as either "02-Jan-2006" or "2006-01-02".
func parseProfileDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{layoutDayMonth, layoutISODate} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// dateOnly truncates an upstream date string to its date part for display.
func dateOnly(raw string) string {
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}
