package pricehistory

import (
	"errors"
	"fmt"
	"testing"

	"TradeScope/internal/domain/models"
)

func rec(close, volume string) RawRecord {
	return RawRecord{Close: close, Volume: volume}
}

func TestNormalizeSortsAscending(t *testing.T) {
	// Upstream delivers newest-first; map iteration order is random anyway.
	records := map[string]RawRecord{
		"2024-03-15": rec("103.5", "1200"),
		"2024-03-13": rec("101.0", "1000"),
		"2024-03-14": rec("102.2", "1100"),
	}

	series, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if series.Len() != 3 {
		t.Fatalf("Len = %d, want 3", series.Len())
	}
	for i := 1; i < series.Len(); i++ {
		if !series.Points[i-1].Date.Before(series.Points[i].Date) {
			t.Fatalf("dates not strictly ascending at %d", i)
		}
	}

	latest, ok := series.Latest()
	if !ok || latest.Close != 103.5 {
		t.Fatalf("Latest = %+v, want close 103.5", latest)
	}
}

func TestNormalizeBadCloseIsParseError(t *testing.T) {
	records := map[string]RawRecord{
		"2024-03-13": rec("101.0", "1000"),
		"2024-03-14": rec("not-a-number", "1100"),
	}

	_, err := Normalize(records)
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestNormalizeBadVolumeIsParseError(t *testing.T) {
	records := map[string]RawRecord{
		"2024-03-13": rec("101.0", ""),
		"2024-03-14": rec("102.0", "1100"),
	}

	_, err := Normalize(records)
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
}

func TestNormalizeTooFewPoints(t *testing.T) {
	for _, records := range []map[string]RawRecord{
		nil,
		{"2024-03-13": rec("101.0", "1000")},
	} {
		_, err := Normalize(records)
		if !errors.Is(err, models.ErrInsufficientHistory) {
			t.Fatalf("err = %v, want ErrInsufficientHistory", err)
		}
	}
}

func TestNormalizeTrailingVolumeWindow(t *testing.T) {
	records := make(map[string]RawRecord, 30)
	for i := 0; i < 30; i++ {
		date := fmt.Sprintf("2024-01-%02d", i+1)
		records[date] = rec("100", fmt.Sprintf("%d", 1000+i))
	}

	series, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if len(series.Volumes20) != 20 {
		t.Fatalf("Volumes20 len = %d, want 20", len(series.Volumes20))
	}
	// Window covers days 11..30, oldest first.
	if series.Volumes20[0] != 1010 || series.Volumes20[19] != 1029 {
		t.Fatalf("Volumes20 window = [%v..%v], want [1010..1029]",
			series.Volumes20[0], series.Volumes20[19])
	}
}

func TestNormalizeShortSeriesKeepsAllVolumes(t *testing.T) {
	records := map[string]RawRecord{
		"2024-03-13": rec("101.0", "1000"),
		"2024-03-14": rec("102.0", "1100"),
		"2024-03-15": rec("103.0", "1200"),
	}

	series, err := Normalize(records)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(series.Volumes20) != 3 {
		t.Fatalf("Volumes20 len = %d, want 3", len(series.Volumes20))
	}
}
