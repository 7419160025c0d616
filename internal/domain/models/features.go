package models

// FeatureVector is the fixed, versioned input of the external prediction
// model. The JSON key set and formulas are part of the predictor contract;
// adding, renaming, or dropping a key breaks the remote model.
type FeatureVector struct {
	// (close − ema20) / ema20
	PriceEmaRatio float64 `json:"price_ema_ratio"`
	// rsi − 50
	RsiCentered float64 `json:"rsi_centered"`
	// (bbUpper − bbLower) / bbMiddle
	BbPercentWidth float64 `json:"bb_percent_width"`
	// atr / close
	AtrPriceRatio float64 `json:"atr_price_ratio"`
	// population stddev of daily fractional returns
	Volatility float64 `json:"volatility"`
	// mean over the 20-day window of dailyVolume / sharesOutstanding
	RelativeVolume float64 `json:"relative_volume"`
	// close / ttmEps
	PIRatio float64 `json:"p_i_ratio"`
	// ln(marketCap)
	LogMarketCap float64 `json:"log_market_cap"`
	// p_i_ratio / sp500PeProxy
	RelativePeRatio float64 `json:"relative_pe_ratio"`
}

// Prediction is the external model's verdict for one feature vector.
type Prediction struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}
