package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DayLayout is the calendar date format exchanged with the backend.
	DayLayout = "2006-01-02"
	// TimeLayout is the wall-clock format stored on a status form.
	TimeLayout = "15:04:05"
)

// Day formats t as a calendar date in t's location.
func Day(t time.Time) string {
	return t.Format(DayLayout)
}

// WallTime formats t as HH:MM:SS.
func WallTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// NormalizeDay accepts a plain date or a full timestamp and returns the
// calendar date part.
func NormalizeDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DayLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// TimeOfDay is an hour and minute, e.g. the daily due time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// On returns the instant of t on the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, mo, d := ref.Date()
	return time.Date(y, mo, d, t.Hour, t.Minute, 0, 0, ref.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
