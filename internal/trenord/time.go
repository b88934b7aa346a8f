package trenord

import (
	"fmt"
	"time"
)

const clockLayout = "15:04:05"

// ParseClockTime resolves a naive HH:MM:SS wall-clock string against a
// service day. An empty string means "no time" and yields nil. Times whose
// hour falls before splitHour belong to the small hours after midnight and
// are pushed to the day after the service day.
func ParseClockTime(s string, day time.Time, splitHour int) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	clock, err := time.Parse(clockLayout, s)
	if err != nil {
		return nil, fmt.Errorf("clock time %q: %w", s, err)
	}
	t := time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location())
	if clock.Hour() < splitHour {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
