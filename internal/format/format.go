// Package format holds the pure display helpers of the board: relative departure
// times, clock times and destination text normalization.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// absoluteAfter is the first minute count shown as a clock time instead of "{n} min".
const absoluteAfter = 20

// FormatRelativeTime renders target relative to now. Departures rounded to zero
// minutes (or in the past) read "Now", anything under twenty minutes reads
// "{n} min", later ones show the wall-clock time in loc.
func FormatRelativeTime(target, now time.Time, loc *time.Location) string {
	diff := target.Sub(now)
	if diff < 0 {
		diff = 0
	}

	mins := int(math.Round(diff.Minutes()))
	switch {
	case mins <= 0:
		return "Now"
	case mins == 1:
		return "1 min"
	case mins < absoluteAfter:
		return fmt.Sprintf("%d min", mins)
	default:
		return FormatClock(target, loc)
	}
}

// FormatClock renders t as zero-padded "HH:MM" in loc (time.Local when nil).
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}

// NormalizeDestination collapses runs of whitespace into single spaces and trims the edges.
func NormalizeDestination(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
