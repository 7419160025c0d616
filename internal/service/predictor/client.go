package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/service"
	apphttp "TradeScope/pkg/http"
	applogger "TradeScope/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// endpoints maps prediction horizons in days to model endpoints. Each
// horizon is a separately trained model; an unknown horizon falls back to
// the 30-day model.
var endpoints = map[int]string{
	30:   "/predict/30day",
	60:   "/predict/60day",
	90:   "/predict/90day",
	180:  "/predict/180day",
	365:  "/predict/365day",
	730:  "/predict/730day",
	1460: "/predict/1460day",
}

const defaultEndpoint = "/predict/30day"

// Client calls the external prediction model over HTTP. Transient
// failures are retried with exponential backoff up to maxAttempts; every
// failure surfaces as ErrPredictionService so the orchestrator fails the
// request rather than degrading to a partial score.
type Client struct {
	http        *apphttp.Client
	baseURL     string
	maxAttempts int
	log         *applogger.Logger
}

// New creates a predictor client.
func New(httpClient *apphttp.Client, baseURL string, maxAttempts int, log *applogger.Logger) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		http:        httpClient,
		baseURL:     baseURL,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

var _ service.Predictor = (*Client)(nil)

// Predict posts the feature vector to the model for the given horizon and
// returns its binary verdict with confidence.
func (c *Client) Predict(ctx context.Context, features models.FeatureVector, horizonDays int) (models.Prediction, error) {
	endpoint, ok := endpoints[horizonDays]
	if !ok {
		endpoint = defaultEndpoint
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)

	var pred models.Prediction
	attempt := 0
	op := func() error {
		attempt++
		var body []byte
		err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
			Method: apphttp.MethodPost,
			URL:    c.baseURL + endpoint,
			Body:   features,
		}, &body)
		if err != nil {
			c.log.Warn("predictor request failed",
				applogger.String("endpoint", endpoint),
				applogger.Int("attempt", attempt),
				applogger.Error(err),
			)
			return err
		}
		if err := json.Unmarshal(body, &pred); err != nil {
			// A malformed body will not improve on retry.
			return backoff.Permanent(fmt.Errorf("decode prediction: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return models.Prediction{}, fmt.Errorf("%w: %s: %v", models.ErrPredictionService, endpoint, err)
	}
	return pred, nil
}
