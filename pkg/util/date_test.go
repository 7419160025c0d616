package util

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowStart(t *testing.T) {
	end := date(2024, time.March, 15)

	tests := []struct {
		name     string
		duration int
		unit     string
		want     time.Time
	}{
		{"single day is the end date itself", 1, "day", date(2024, time.March, 15)},
		{"ten days", 10, "day", date(2024, time.March, 6)},
		{"two weeks", 2, "week", date(2024, time.March, 8)},
		{"three months", 3, "month", date(2024, time.January, 15)},
		{"one year is the end date itself", 1, "year", date(2024, time.March, 15)},
		{"two years", 2, "year", date(2023, time.March, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WindowStart(end, tt.duration, tt.unit)
			if err != nil {
				t.Fatalf("WindowStart: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("WindowStart(%d %s) = %v, want %v", tt.duration, tt.unit, got, tt.want)
			}
		})
	}
}

func TestWindowStartUnknownUnit(t *testing.T) {
	if _, err := WindowStart(time.Now(), 1, "fortnight"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestApproxDays(t *testing.T) {
	tests := []struct {
		duration int
		unit     string
		want     int
	}{
		{5, "day", 5},
		{2, "week", 14},
		{3, "month", 90},
		{1, "year", 365},
	}

	for _, tt := range tests {
		if got := ApproxDays(tt.duration, tt.unit); got != tt.want {
			t.Errorf("ApproxDays(%d, %s) = %d, want %d", tt.duration, tt.unit, got, tt.want)
		}
	}
}
