package significance

import (
	"fmt"
	"math"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/pkg/config"
	"TradeScope/pkg/util"
)

// Tester decides whether the latest price is a notable deviation from the
// window mean, by percent change or z-score.
type Tester struct {
	cfg config.SignificanceConfig
}

// New creates a Tester with the given thresholds.
func New(cfg config.SignificanceConfig) *Tester {
	return &Tester{cfg: cfg}
}

// Result is the verdict plus the percent deviation that fed it. The percent
// change is nil when the window was too small to compute one.
type Result struct {
	Significance          models.Significance
	PercentChangeFromMean *float64
}

// Test filters the series to [windowStart, windowEnd] and applies both
// deviation tests; the verdict is the OR of the two. Fewer than 2 points in
// the window reports "not enough data" rather than failing.
func (t *Tester) Test(series models.PriceSeries, latest float64, windowStart, windowEnd time.Time, duration int, unit string) Result {
	window := series.ClosesBetween(windowStart, windowEnd)

	if len(window) < 2 {
		return Result{
			Significance: models.Significance{
				Significant: false,
				Message: fmt.Sprintf(
					"Not enough data for statistical analysis over the specified period (%d %s).",
					duration, unit),
			},
		}
	}

	mean := Mean(window)
	stddev := StandardDeviation(window, mean)

	var percentChange float64
	if mean != 0 {
		percentChange = (latest - mean) / mean * 100
	}

	significantByPercent := math.Abs(percentChange) > t.cfg.PercentThreshold

	significantByZScore := false
	if stddev != 0 {
		zScore := (latest - mean) / stddev
		significantByZScore = math.Abs(zScore) > t.cfg.ZScoreThreshold
	}

	message := fmt.Sprintf(
		"Latest price ($%.2f) vs. mean ($%.2f) over %d %s(s): %.2f%% change. Std Dev: %.2f.",
		latest, mean, duration, unit, percentChange, stddev)

	if len(window) < util.ApproxDays(duration, unit) {
		message += fmt.Sprintf(
			" (Analysis based on %d available data points, less than requested period due to API limits).",
			len(window))
	}

	return Result{
		Significance: models.Significance{
			Significant: significantByPercent || significantByZScore,
			Message:     message,
		},
		PercentChangeFromMean: models.Float(percentChange),
	}
}

// Mean is the arithmetic mean.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StandardDeviation is the sample standard deviation (n-1 divisor), unlike
// the population formula used for Bollinger bands.
func StandardDeviation(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
