package models

// AnalyzeRequest is the public analysis request. Units are calendar units for
// the statistical window, not for the fetched history (upstream always returns
// the compact daily series).
type AnalyzeRequest struct {
	Ticker   string `query:"ticker" json:"ticker" validate:"required"`
	Duration int    `query:"duration" json:"duration" validate:"required,gt=0"`
	Unit     string `query:"unit" json:"unit" validate:"required,oneof=day week month year"`
}

// Significance is the verdict of the statistical deviation test.
type Significance struct {
	Significant bool   `json:"statisticallySignificant"`
	Message     string `json:"message"`
}

// AnalysisResult is the terminal artifact of one analysis request. It is
// returned to the caller and, for watchlist evaluation, feeds alert events;
// the core never persists it.
type AnalysisResult struct {
	Ticker      string  `json:"receivedTicker"`
	Duration    int     `json:"receivedDurationValue"`
	Unit        string  `json:"receivedDurationUnit"`
	LatestPrice float64 `json:"latestPrice"`

	Indicators   IndicatorSet `json:"indicators"`
	Significance Significance `json:"significance"`

	// Fundamentals is present only when the fundamentals fan-out ran
	// (remote scoring mode); the heuristic path never fetches them.
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`

	// Score is in [0,100]; Category is its banded interpretation. When the
	// remote scorer is selected, Probability carries the model's probability
	// and the heuristic score is not computed.
	Score       int      `json:"signalScore"`
	Category    string   `json:"scoreInterpretation"`
	Probability *float64 `json:"probability,omitempty"`

	HistoricalPrices []PricePoint `json:"historicalPrices"`
}

// AlertEvent is published when a watchlist evaluation crosses the alert
// policy. It mirrors the analysis result, flattened for downstream consumers.
type AlertEvent struct {
	Ticker       string  `json:"stockTicker"`
	AlertType    string  `json:"alertType"`
	CurrentPrice float64 `json:"currentPrice"`
	Score        int     `json:"signalScore"`
	Category     string  `json:"scoreInterpretation"`
	Significant  bool    `json:"isStatisticallySignificant"`
	Message      string  `json:"message"`
	PeriodValue  int     `json:"periodValue"`
	PeriodUnit   string  `json:"periodUnit"`
	Timestamp    string  `json:"alertTimestamp"`
}
