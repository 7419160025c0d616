package service

import (
	"context"

	"TradeScope/internal/domain/models"
)

// Scorer turns indicators and fundamentals into a bounded [0,100] score and
// category. The heuristic and remote implementations are mutually exclusive;
// configuration selects one, their outputs are never blended.
type Scorer interface {
	Score(ctx context.Context, ind models.IndicatorSet, fund models.Fundamentals) (score int, category string, probability *float64, err error)
}

// Predictor is the external prediction model consumed as a black box over
// HTTP. The horizon selects the model endpoint (7/30/60/... days).
type Predictor interface {
	Predict(ctx context.Context, features models.FeatureVector, horizonDays int) (models.Prediction, error)
}
