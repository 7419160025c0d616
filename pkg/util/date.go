package util

import (
	"fmt"
	"time"
)

// WindowStart returns the inclusive start date of an analysis window ending
// at end. A window of N units includes the end unit itself, so the start
// lands duration-1 units back.
func WindowStart(end time.Time, duration int, unit string) (time.Time, error) {
	switch unit {
	case "day":
		return end.AddDate(0, 0, -(duration - 1)), nil
	case "week":
		return end.AddDate(0, 0, -7*(duration-1)), nil
	case "month":
		return end.AddDate(0, -(duration - 1), 0), nil
	case "year":
		return end.AddDate(-(duration - 1), 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown unit %q", unit)
	}
}

// ApproxDays converts a duration/unit pair to an approximate calendar day
// count, used to compare requested window size against available history.
func ApproxDays(duration int, unit string) int {
	switch unit {
	case "week":
		return duration * 7
	case "month":
		return duration * 30
	case "year":
		return duration * 365
	default:
		return duration
	}
}
