package features

import (
	"math"

	"TradeScope/internal/domain/models"
)

// BuildVector assembles the predictor's feature vector from the computed
// indicators and joined fundamentals. Every feature is required; a missing
// indicator (short series) or a zero denominator is an upstream data error
// rather than a silent zero, because a zeroed feature would silently skew
// the model.
func BuildVector(ind models.IndicatorSet, fund models.Fundamentals, volumes20 []float64) (models.FeatureVector, error) {
	var v models.FeatureVector

	if ind.Ema20 == nil || ind.Rsi == nil || ind.BbUpper == nil || ind.BbLower == nil ||
		ind.BbMiddle == nil || ind.Atr == nil {
		return v, models.UpstreamErrorf("insufficient history for feature vector")
	}

	close := ind.LatestClose
	ema20 := *ind.Ema20

	switch {
	case ema20 == 0:
		return v, models.UpstreamErrorf("ema20 is zero")
	case *ind.BbMiddle == 0:
		return v, models.UpstreamErrorf("bollinger middle band is zero")
	case close == 0:
		return v, models.UpstreamErrorf("latest close is zero")
	case fund.SharesOutstanding == 0:
		return v, models.UpstreamErrorf("shares outstanding is zero")
	case fund.TtmEPS == 0:
		return v, models.UpstreamErrorf("ttm eps is zero")
	case fund.MarketCapUSD <= 0:
		return v, models.UpstreamErrorf("market cap is not positive")
	case fund.SP500PeProxy == 0:
		return v, models.UpstreamErrorf("benchmark pe proxy is zero")
	case len(volumes20) == 0:
		return v, models.UpstreamErrorf("no volume window")
	}

	v.PriceEmaRatio = (close - ema20) / ema20
	v.RsiCentered = *ind.Rsi - 50
	v.BbPercentWidth = (*ind.BbUpper - *ind.BbLower) / *ind.BbMiddle
	v.AtrPriceRatio = *ind.Atr / close
	v.Volatility = ind.Volatility
	v.RelativeVolume = relativeVolume(volumes20, fund.SharesOutstanding)
	v.PIRatio = close / fund.TtmEPS
	v.LogMarketCap = math.Log(fund.MarketCapUSD)
	v.RelativePeRatio = v.PIRatio / fund.SP500PeProxy

	return v, nil
}

// relativeVolume is the mean of the daily volume/sharesOutstanding ratios
// over the trailing window, matching the 20-day rolling mean the model was
// trained on. It is the mean of ratios, not sum/shares.
func relativeVolume(volumes []float64, sharesOutstanding float64) float64 {
	sum := 0.0
	for _, v := range volumes {
		sum += v / sharesOutstanding
	}
	return sum / float64(len(volumes))
}
