package util

import "time"

// LastSeenLayout renders as "2024-05-01 || 18:30".
const LastSeenLayout = "2006-01-02 || 15:04"

// FormatLastSeen formats t in loc (time.Local when nil), or returns "Unknown"
// for a missing timestamp.
func FormatLastSeen(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "Unknown"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(LastSeenLayout)
}

// FromUnix converts a Steam epoch-seconds field, treating 0 as absent.
func FromUnix(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}
