package models

// IndicatorSet holds the computed technical indicators for one analysis.
// Pointer fields are nil when the series was too short for that indicator;
// a nil indicator is omitted from scoring and from the JSON response rather
// than surfacing as a zero.
type IndicatorSet struct {
	LatestClose float64 `json:"latestClosePrice"`

	Sma50 *float64 `json:"sma50,omitempty"`
	Ema20 *float64 `json:"ema20,omitempty"`

	Rsi       *float64 `json:"rsi,omitempty"`
	RsiSignal string   `json:"rsiSignal,omitempty"`

	MacdLine      *float64 `json:"macdLine,omitempty"`
	MacdSignal    *float64 `json:"macdSignal,omitempty"`
	MacdHistogram *float64 `json:"macdHistogram,omitempty"`
	MacdLabel     string   `json:"macdSignalInterpretation,omitempty"`

	BbMiddle *float64 `json:"bbMiddle,omitempty"`
	BbUpper  *float64 `json:"bbUpper,omitempty"`
	BbLower  *float64 `json:"bbLower,omitempty"`
	BbLabel  string   `json:"bollingerBandSignal,omitempty"`

	// Atr is a simplified average true range computed from close-to-close
	// differences; the feed carries no highs/lows, so this is not the
	// canonical high/low/close ATR.
	Atr *float64 `json:"atr,omitempty"`

	// Volatility is the population standard deviation of daily fractional
	// returns over the full series (a 1% move is 0.01).
	Volatility float64 `json:"volatility"`

	LatestVolume float64 `json:"latestVolume"`

	// Volumes20 carries the trailing volume window through to the feature
	// builder; it is an input, not an output, and stays out of the response.
	Volumes20 []float64 `json:"-"`

	PercentChangeFromMean *float64 `json:"percentageChangeFromMean,omitempty"`
}

// Float returns a pointer to v; used when populating optional indicators.
func Float(v float64) *float64 { return &v }
