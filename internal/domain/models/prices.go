package models

import (
	"time"
)

// PricePoint is a single daily observation of a ticker.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is an ascending, deduplicated daily close series.
// Construct it via pricehistory.Normalize; it is never mutated afterwards.
type PriceSeries struct {
	Points []PricePoint `json:"points"`
	// Volumes20 holds the trailing window of up to 20 volume observations,
	// oldest first, used for the relative-volume feature.
	Volumes20 []float64 `json:"-"`
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes projects the series onto closing prices, oldest first.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Latest returns the most recent point. ok is false on an empty series.
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// ClosesBetween returns closes with dates in [from, to], inclusive.
func (s PriceSeries) ClosesBetween(from, to time.Time) []float64 {
	out := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		out = append(out, p.Close)
	}
	return out
}

// Fundamentals carries the per-ticker fundamental inputs joined by the
// orchestrator. Every fetched value is required; absence of any one fails
// the analysis rather than degrading to zero. MarketCapUSD, TtmEPS,
// SharesOutstanding, and SP500PeProxy feed the feature vector; PeRatioTTM
// and LatestNetIncome ride along into the response.
type Fundamentals struct {
	MarketCapUSD      float64 `json:"marketCap"`
	TtmEPS            float64 `json:"ttmEps"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	PeRatioTTM        float64 `json:"peRatioTtm"`
	LatestNetIncome   float64 `json:"latestNetIncome"`
	SP500PeProxy      float64 `json:"sp500PeProxy"`
	// Sentiment is optional; nil means the sentiment feed is disabled or
	// returned nothing, and contributes no scoring points.
	Sentiment *float64 `json:"sentiment,omitempty"`
}
