package indicators

import (
	"math"

	"TradeScope/internal/domain/models"
)

// Standard periods. These are indicator-definition constants, not tuning
// knobs, so they stay fixed rather than configurable.
const (
	SmaPeriod        = 50
	EmaPeriod        = 20
	RsiPeriod        = 14
	MacdFastPeriod   = 12
	MacdSlowPeriod   = 26
	MacdSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerWidth   = 2.0
	AtrPeriod        = 14
)

// Compute derives the full indicator set from an ascending price series.
// Each indicator that lacks sufficient history is left nil and omitted from
// the result; the caller decides whether that matters.
func Compute(series models.PriceSeries) models.IndicatorSet {
	closes := series.Closes()

	set := models.IndicatorSet{
		Volatility: Volatility(closes),
		Volumes20:  series.Volumes20,
	}
	if latest, ok := series.Latest(); ok {
		set.LatestClose = latest.Close
		set.LatestVolume = latest.Volume
	}

	if sma, ok := Sma(closes, SmaPeriod); ok {
		set.Sma50 = models.Float(sma)
	}
	if ema, ok := Ema(closes, EmaPeriod); ok {
		set.Ema20 = models.Float(ema)
	}
	if rsi, ok := Rsi(closes, RsiPeriod); ok {
		set.Rsi = models.Float(rsi)
		set.RsiSignal = RsiLabel(rsi)
	}
	if line, signal, hist, ok := Macd(closes); ok {
		set.MacdLine = models.Float(line)
		set.MacdSignal = models.Float(signal)
		set.MacdHistogram = models.Float(hist)
		set.MacdLabel = MacdLabel(line, signal, hist)
	}
	if middle, upper, lower, ok := Bollinger(closes, BollingerPeriod, BollingerWidth); ok {
		set.BbMiddle = models.Float(middle)
		set.BbUpper = models.Float(upper)
		set.BbLower = models.Float(lower)
		set.BbLabel = BollingerLabel(set.LatestClose, upper, lower)
	}
	if atr, ok := Atr(closes, AtrPeriod); ok {
		set.Atr = models.Float(atr)
	}

	return set
}

// Sma returns the arithmetic mean of the last period closes.
func Sma(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period {
		return 0, false
	}
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// Ema returns the latest value of the exponential moving average, seeded
// with the SMA of the first period closes.
func Ema(closes []float64, period int) (float64, bool) {
	series, ok := emaSeries(closes, period)
	if !ok {
		return 0, false
	}
	return series[len(series)-1], true
}

// emaSeries computes the running EMA. The returned slice has one value per
// close from index period-1 onward.
func emaSeries(closes []float64, period int) ([]float64, bool) {
	if period <= 0 || len(closes) < period {
		return nil, false
	}

	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}
	seed /= float64(period)

	multiplier := 2.0 / float64(period+1)
	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, seed)

	prev := seed
	for _, c := range closes[period:] {
		prev = (c-prev)*multiplier + prev
		out = append(out, prev)
	}
	return out, true
}

// Rsi computes the Relative Strength Index with Wilder's smoothing. The
// seed averages are simple means over the first period changes; each later
// change folds in with weight 1/period. Requires period+1 closes.
func Rsi(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (gain + avgGain*float64(period-1)) / float64(period)
		avgLoss = (loss + avgLoss*float64(period-1)) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	if avgGain == 0 {
		return 0, true
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// Macd computes the MACD(12,26,9) line, signal, and histogram. The line is
// the running EMA(12)-EMA(26) difference; the signal is the EMA(9) of that
// line series. Requires 35 closes so the signal has a full seed window.
func Macd(closes []float64) (line, signal, histogram float64, ok bool) {
	if len(closes) < MacdSlowPeriod+MacdSignalPeriod {
		return 0, 0, 0, false
	}

	fast, _ := emaSeries(closes, MacdFastPeriod)
	slow, _ := emaSeries(closes, MacdSlowPeriod)

	// Align both series on the slow EMA's first defined index.
	offset := len(fast) - len(slow)
	macdLine := make([]float64, len(slow))
	for i := range slow {
		macdLine[i] = fast[i+offset] - slow[i]
	}

	signalSeries, ok := emaSeries(macdLine, MacdSignalPeriod)
	if !ok {
		return 0, 0, 0, false
	}

	line = macdLine[len(macdLine)-1]
	signal = signalSeries[len(signalSeries)-1]
	return line, signal, line - signal, true
}

// Bollinger computes the middle band as SMA(period) and the outer bands at
// width population standard deviations. The band convention divides the
// variance by n, not n-1.
func Bollinger(closes []float64, period int, width float64) (middle, upper, lower float64, ok bool) {
	middle, ok = Sma(closes, period)
	if !ok {
		return 0, 0, 0, false
	}

	window := closes[len(closes)-period:]
	sumSquares := 0.0
	for _, c := range window {
		diff := c - middle
		sumSquares += diff * diff
	}
	stddev := math.Sqrt(sumSquares / float64(period))

	return middle, middle + width*stddev, middle - width*stddev, true
}

// Atr computes a simplified average true range as the mean of the last
// period absolute close-to-close changes. The daily feed carries no
// highs/lows, so this is not the canonical ATR. Requires period+1 closes.
func Atr(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += math.Abs(closes[i] - closes[i-1])
	}
	return sum / float64(period), true
}

// Volatility is the population standard deviation of day-over-day
// fractional returns across the whole series. The fractional scale (a 1%
// move is 0.01) is what the scoring threshold and the prediction model
// are calibrated against. Returns 0 for fewer than 2 closes.
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	sumSquares := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(returns)))
}
