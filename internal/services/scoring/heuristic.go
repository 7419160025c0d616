package scoring

import (
	"context"
	"math"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/service"
	"TradeScope/pkg/config"
)

// Heuristic scores an indicator set with hand-tuned point contributions.
// Each contribution is independent; missing indicators simply contribute
// nothing. The weights come from configuration, they are policy, not math.
type Heuristic struct {
	cfg config.ScoringConfig
}

// NewHeuristic creates a heuristic scorer.
func NewHeuristic(cfg config.ScoringConfig) *Heuristic {
	return &Heuristic{cfg: cfg}
}

var _ service.Scorer = (*Heuristic)(nil)

// Score sums the point contributions, normalizes onto [0,100], and bands
// the result. It never fails and returns no probability.
func (h *Heuristic) Score(_ context.Context, ind models.IndicatorSet, fund models.Fundamentals) (int, string, *float64, error) {
	raw := h.applyRsi(ind) +
		h.applyMacd(ind) +
		h.applyBollinger(ind) +
		h.applySma(ind) +
		h.applyVolume(ind) +
		h.applyAtr(ind) +
		h.applyVolatility(ind) +
		h.applySentiment(fund)

	score := h.normalize(raw)
	return score, h.Categorize(score), nil, nil
}

func (h *Heuristic) applyRsi(ind models.IndicatorSet) float64 {
	if ind.Rsi == nil {
		return 0
	}
	rsi := *ind.Rsi
	if rsi > 50 && rsi < h.cfg.RsiOverboughtMin {
		return (rsi - 50) * h.cfg.RsiMomentumFactor
	}
	if rsi <= h.cfg.RsiOversoldMax {
		// Oversold bounce potential.
		return h.cfg.RsiOversoldBonus
	}
	return 0
}

func (h *Heuristic) applyMacd(ind models.IndicatorSet) float64 {
	if ind.MacdLine == nil || ind.MacdSignal == nil {
		return 0
	}
	delta := *ind.MacdLine - *ind.MacdSignal
	if delta <= 0 {
		return 0
	}
	return math.Min(h.cfg.MacdCap, delta*h.cfg.MacdDeltaFactor)
}

func (h *Heuristic) applyBollinger(ind models.IndicatorSet) float64 {
	if ind.BbUpper == nil || ind.BbLower == nil {
		return 0
	}
	if ind.LatestClose > *ind.BbUpper {
		// Overextended above the band.
		return -h.cfg.BbBreakoutPenalty
	}
	if ind.LatestClose < *ind.BbLower {
		return h.cfg.BbBounceBonus
	}
	return 0
}

func (h *Heuristic) applySma(ind models.IndicatorSet) float64 {
	if ind.Sma50 != nil && ind.LatestClose > *ind.Sma50 {
		return h.cfg.SmaAboveBonus
	}
	return 0
}

func (h *Heuristic) applyVolume(ind models.IndicatorSet) float64 {
	if ind.LatestVolume > h.cfg.VolumeThreshold {
		return h.cfg.VolumeBonus
	}
	return 0
}

func (h *Heuristic) applyAtr(ind models.IndicatorSet) float64 {
	if ind.Atr == nil {
		return 0
	}
	// Short-horizon trading rewards volatility.
	if *ind.Atr > h.cfg.AtrHighThreshold {
		return h.cfg.AtrHighBonus
	}
	if *ind.Atr > h.cfg.AtrModThreshold {
		return h.cfg.AtrModBonus
	}
	return 0
}

func (h *Heuristic) applyVolatility(ind models.IndicatorSet) float64 {
	if ind.Volatility > h.cfg.VolatilityMin {
		return h.cfg.VolatilityBonus
	}
	return 0
}

func (h *Heuristic) applySentiment(fund models.Fundamentals) float64 {
	if fund.Sentiment == nil {
		return 0
	}
	s := *fund.Sentiment
	switch {
	case s >= h.cfg.SentimentStrong:
		return h.cfg.SentimentStrongPts
	case s >= h.cfg.SentimentWeak:
		return h.cfg.SentimentWeakPts
	case s <= -h.cfg.SentimentStrong:
		return -h.cfg.SentimentStrongPts
	case s <= -h.cfg.SentimentWeak:
		return -h.cfg.SentimentWeakPts
	default:
		return 0
	}
}

// normalize maps the raw total from roughly [min, min+range] onto [0,100].
func (h *Heuristic) normalize(raw float64) int {
	normalized := (raw - h.cfg.NormalizeMin) / h.cfg.NormalizeRange * 100
	score := int(math.Round(normalized))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Categorize bands a normalized score into its interpretation.
func (h *Heuristic) Categorize(score int) string {
	switch {
	case score >= h.cfg.StrongBuyMin:
		return "Strong Buy"
	case score >= h.cfg.BuyMin:
		return "Buy"
	case score >= h.cfg.NeutralMin:
		return "Neutral"
	case score >= h.cfg.SellMin:
		return "Sell"
	default:
		return "Strong Sell"
	}
}
