package scoring

import (
	"context"
	"fmt"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/service"
	"TradeScope/internal/services/features"
)

// Remote scores via the external prediction model: the indicator set and
// fundamentals are flattened into the feature vector and posted to the
// model for the configured horizon. The binary prediction becomes the
// score and the model's probability rides along; nothing is blended with
// the heuristic path.
type Remote struct {
	predictor   service.Predictor
	horizonDays int
}

// NewRemote creates a remote scorer bound to one prediction horizon.
func NewRemote(predictor service.Predictor, horizonDays int) *Remote {
	return &Remote{predictor: predictor, horizonDays: horizonDays}
}

var _ service.Scorer = (*Remote)(nil)

func (r *Remote) Score(ctx context.Context, ind models.IndicatorSet, fund models.Fundamentals) (int, string, *float64, error) {
	vector, err := features.BuildVector(ind, fund, ind.Volumes20)
	if err != nil {
		return 0, "", nil, fmt.Errorf("build feature vector: %w", err)
	}

	pred, err := r.predictor.Predict(ctx, vector, r.horizonDays)
	if err != nil {
		return 0, "", nil, err
	}

	category := "Underperform"
	if pred.Prediction == 1 {
		category = "Outperform"
	}
	return pred.Prediction, category, models.Float(pred.Probability), nil
}
