package recon

import (
	"strings"
	"time"
)

// LocalDateKey returns the YYYY-MM-DD calendar date of t in time.Local.
func LocalDateKey(t time.Time) string {
	return DateKey(t, time.Local)
}

// DateKey returns the YYYY-MM-DD calendar date of t in loc (nil means
// time.Local). The time-of-day component never affects the key. UTC is
// never assumed: converting a local-midnight journey date to UTC would move
// it to the previous day east of Greenwich.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(time.DateOnly)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight in loc (nil means time.Local).
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(time.DateOnly, key, loc)
}

// FormatSlashDate rewrites legacy "M/D/YY" or "M/D/YYYY" text to YYYY-MM-DD.
// Month and day are zero-padded and two-digit years are prefixed with "20".
// Anything that is not exactly three slash-separated parts is returned
// unchanged; this is a permissive rewrite, not validation.
func FormatSlashDate(text string) string {
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return text
	}

	month, day, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return year + "-" + padTwo(month) + "-" + padTwo(day)
}

func padTwo(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}
