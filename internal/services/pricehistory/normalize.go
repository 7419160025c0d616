package pricehistory

import (
	"sort"
	"strconv"
	"time"

	"TradeScope/internal/domain/models"
)

const dateLayout = "2006-01-02"

// RawRecord is one upstream daily observation, still string-typed as it
// arrives on the wire.
type RawRecord struct {
	Close  string
	Volume string
}

// Normalize converts a date-keyed map of raw records into an ascending
// PriceSeries. Upstream delivers records newest-first; everything downstream
// requires oldest-first. Duplicate dates keep the first occurrence seen in
// sorted key order. Fails with a parse error on any missing or non-numeric
// close/volume, and with ErrInsufficientHistory when fewer than 2 points
// survive normalization.
func Normalize(records map[string]RawRecord) (models.PriceSeries, error) {
	if len(records) == 0 {
		return models.PriceSeries{}, models.ErrInsufficientHistory
	}

	dates := make([]string, 0, len(records))
	for d := range records {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	points := make([]models.PricePoint, 0, len(dates))
	var prev time.Time
	for _, d := range dates {
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			return models.PriceSeries{}, models.ParseErrorf("bad date %q: %v", d, err)
		}
		if len(points) > 0 && date.Equal(prev) {
			continue
		}

		rec := records[d]
		closePrice, err := strconv.ParseFloat(rec.Close, 64)
		if err != nil {
			return models.PriceSeries{}, models.ParseErrorf("bad close for %s: %q", d, rec.Close)
		}
		volume, err := strconv.ParseFloat(rec.Volume, 64)
		if err != nil {
			return models.PriceSeries{}, models.ParseErrorf("bad volume for %s: %q", d, rec.Volume)
		}

		points = append(points, models.PricePoint{Date: date, Close: closePrice, Volume: volume})
		prev = date
	}

	if len(points) < 2 {
		return models.PriceSeries{}, models.ErrInsufficientHistory
	}

	return models.PriceSeries{
		Points:    points,
		Volumes20: trailingVolumes(points, 20),
	}, nil
}

// trailingVolumes returns the last n volumes oldest-first, or all of them
// when the series is shorter than n.
func trailingVolumes(points []models.PricePoint, n int) []float64 {
	start := len(points) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, len(points)-start)
	for _, p := range points[start:] {
		out = append(out, p.Volume)
	}
	return out
}
