package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	"TradeScope/internal/service/keypool"
	"TradeScope/internal/services/pricehistory"
	apphttp "TradeScope/pkg/http"
	applogger "TradeScope/pkg/logger"

	"github.com/cenkalti/backoff/v4"
)

// Upstream JSON keys. The rate-limit sentinels arrive with HTTP 200; only
// the body distinguishes a quota response from data.
const (
	timeSeriesKey   = "Time Series (Daily)"
	errorMessageKey = "Error Message"
	noteKey         = "Note"
	informationKey  = "Information"
)

// RetryPolicy supplies the delay schedule between rotated attempts. The
// baseline contract is zero delay; an exponential policy can be swapped in
// via configuration.
type RetryPolicy func() backoff.BackOff

// NoDelay is the default policy: rotate and retry immediately.
func NoDelay() backoff.BackOff { return &backoff.ZeroBackOff{} }

// ExponentialDelay backs off between rotated attempts, for deployments
// where all keys share one upstream quota window.
func ExponentialDelay() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	return b
}

// Client fetches daily series, the benchmark proxy, and news sentiment
// from Alpha Vantage, rotating API keys on rate-limit sentinels.
type Client struct {
	http            *apphttp.Client
	baseURL         string
	primary         *keypool.Pool
	benchmark       *keypool.Pool
	benchmarkTicker string
	retry           RetryPolicy
	metrics         repository.Metrics
	log             *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithRetryPolicy overrides the delay schedule between rotated attempts.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// New creates an Alpha Vantage client. The primary pool serves per-ticker
// series; the benchmark pool serves the index proxy and news sentiment so a
// hot ticker cannot starve them.
func New(httpClient *apphttp.Client, baseURL string, primary, benchmark *keypool.Pool,
	benchmarkTicker string, metrics repository.Metrics, log *applogger.Logger, opts ...Option) *Client {
	c := &Client{
		http:            httpClient,
		baseURL:         baseURL,
		primary:         primary,
		benchmark:       benchmark,
		benchmarkTicker: benchmarkTicker,
		retry:           NoDelay,
		metrics:         metrics,
		log:             log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ repository.MarketDataProvider = (*Client)(nil)
	_ repository.BenchmarkProvider  = (*Client)(nil)
	_ repository.SentimentProvider  = (*Client)(nil)
)

type dailyRecord struct {
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// DailySeries fetches the compact daily close/volume series for a ticker
// and normalizes it into an ascending PriceSeries.
func (c *Client) DailySeries(ctx context.Context, ticker string) (models.PriceSeries, error) {
	raw, err := c.fetchTimeSeries(ctx, ticker, c.primary)
	if err != nil {
		return models.PriceSeries{}, err
	}

	return pricehistory.Normalize(rawToRecords(raw))
}

// SP500PeProxy fetches the benchmark index series and returns the ratio of
// the latest close over the SMA of the whole available window (at most 100
// points on the compact tier). It is a momentum proxy, not a true P/E.
func (c *Client) SP500PeProxy(ctx context.Context) (float64, error) {
	raw, err := c.fetchTimeSeries(ctx, c.benchmarkTicker, c.benchmark)
	if err != nil {
		return 0, err
	}

	series, err := pricehistory.Normalize(rawToRecords(raw))
	if err != nil {
		return 0, err
	}

	closes := series.Closes()
	sum := 0.0
	for _, cl := range closes {
		sum += cl
	}
	sma := sum / float64(len(closes))
	if sma == 0 {
		return 0, models.UpstreamErrorf("benchmark SMA is zero")
	}

	latest, _ := series.Latest()
	return latest.Close / sma, nil
}

// NewsSentiment returns the overall sentiment score of the most recent
// news article for the ticker. An empty feed scores neutral.
func (c *Client) NewsSentiment(ctx context.Context, ticker string) (float64, error) {
	body, err := c.get(ctx, map[string][]string{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {ticker},
		"apikey":   {c.benchmark.Current()},
	})
	if err != nil {
		c.metrics.RecordFetch("alphavantage_sentiment", "error")
		return 0, err
	}

	var resp struct {
		Feed []struct {
			OverallSentimentScore float64 `json:"overall_sentiment_score"`
		} `json:"feed"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.RecordFetch("alphavantage_sentiment", "error")
		return 0, models.ParseErrorf("sentiment payload: %v", err)
	}

	c.metrics.RecordFetch("alphavantage_sentiment", "success")
	if len(resp.Feed) == 0 {
		return 0, nil
	}
	return resp.Feed[0].OverallSentimentScore, nil
}

// fetchTimeSeries runs the rotation loop: try the pool's current key, and
// on a rate-limit sentinel rotate and retry up to pool-size attempts. Any
// other failure is fatal immediately; rotation is reserved for quota
// errors so real errors are never masked as quota issues.
func (c *Client) fetchTimeSeries(ctx context.Context, ticker string, pool *keypool.Pool) (map[string]dailyRecord, error) {
	delay := c.retry()
	maxAttempts := pool.Size()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		key := pool.Current()

		body, err := c.get(ctx, map[string][]string{
			"function":   {"TIME_SERIES_DAILY"},
			"symbol":     {ticker},
			"outputsize": {"compact"},
			"apikey":     {key},
		})
		if err != nil {
			c.metrics.RecordFetch("alphavantage", "error")
			return nil, fmt.Errorf("alphavantage request for %s: %w", ticker, err)
		}

		var root map[string]json.RawMessage
		if err := json.Unmarshal(body, &root); err != nil {
			c.metrics.RecordFetch("alphavantage", "error")
			return nil, models.ParseErrorf("alphavantage response for %s: %v", ticker, err)
		}

		if msg, limited := rateLimitMessage(root); limited {
			c.metrics.RecordFetch("alphavantage", "rate_limited")
			c.log.Warn("alphavantage quota hit",
				applogger.String("ticker", ticker),
				applogger.String("pool", pool.Name()),
				applogger.Int("attempt", attempt+1),
				applogger.String("detail", msg),
			)
			if attempt < maxAttempts-1 {
				pool.Rotate()
				c.metrics.RecordKeyRotation(pool.Name())
				if err := sleepCtx(ctx, delay.NextBackOff()); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("%w: %d keys tried for %s", models.ErrRateLimitExhausted, maxAttempts, ticker)
		}

		if raw, ok := root[errorMessageKey]; ok {
			c.metrics.RecordFetch("alphavantage", "error")
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, models.UpstreamErrorf("alphavantage rejected %s: %s", ticker, msg)
		}

		seriesRaw, ok := root[timeSeriesKey]
		if !ok {
			c.metrics.RecordFetch("alphavantage", "error")
			return nil, models.UpstreamErrorf("no %q in response for %s", timeSeriesKey, ticker)
		}

		var series map[string]dailyRecord
		if err := json.Unmarshal(seriesRaw, &series); err != nil {
			c.metrics.RecordFetch("alphavantage", "error")
			return nil, models.ParseErrorf("time series for %s: %v", ticker, err)
		}

		c.metrics.RecordFetch("alphavantage", "success")
		return series, nil
	}

	return nil, fmt.Errorf("%w: %d keys tried for %s", models.ErrRateLimitExhausted, maxAttempts, ticker)
}

func (c *Client) get(ctx context.Context, params map[string][]string) ([]byte, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         c.baseURL + "/query",
		QueryParams: params,
	}, &body)
	return body, err
}

// rateLimitMessage reports whether the payload is a quota sentinel. Alpha
// Vantage signals quota exhaustion via "Note" or "Information" top-level
// keys on an otherwise successful response.
func rateLimitMessage(root map[string]json.RawMessage) (string, bool) {
	for _, k := range []string{noteKey, informationKey} {
		if raw, ok := root[k]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return msg, true
		}
	}
	return "", false
}

func rawToRecords(raw map[string]dailyRecord) map[string]pricehistory.RawRecord {
	out := make(map[string]pricehistory.RawRecord, len(raw))
	for date, rec := range raw {
		out[date] = pricehistory.RawRecord{Close: rec.Close, Volume: rec.Volume}
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
