package utils

import (
	"fmt"
	"time"
)

// LocalTimestamp is the layout OVapi uses for pass times: ISO-8601 without a zone offset.
const LocalTimestamp = "2006-01-02T15:04:05"

// ParseTimestamp parses an ISO-8601 timestamp into an absolute time.
// Values carrying a zone offset are taken as is; values without one are read in loc
// (time.Local when loc is nil), the way a browser reads a bare ISO date-time.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(LocalTimestamp, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, nil
}
