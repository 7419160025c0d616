package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	apphttp "TradeScope/pkg/http"
	applogger "TradeScope/pkg/logger"
)

const (
	profilePath = "/stock/profile2"
	metricPath  = "/stock/metric"
)

// Client fetches company fundamentals from Finnhub. Market caps arrive
// denominated in millions of the listing currency and are converted to
// absolute USD before they leave this package.
type Client struct {
	http      *apphttp.Client
	baseURL   string
	apiKey    string
	converter repository.CurrencyConverter
	metrics   repository.Metrics
	log       *applogger.Logger
}

// New creates a Finnhub client.
func New(httpClient *apphttp.Client, baseURL, apiKey string, converter repository.CurrencyConverter,
	metrics repository.Metrics, log *applogger.Logger) *Client {
	return &Client{
		http:      httpClient,
		baseURL:   baseURL,
		apiKey:    apiKey,
		converter: converter,
		metrics:   metrics,
		log:       log,
	}
}

var _ repository.FundamentalsProvider = (*Client)(nil)

// MarketCapUSD returns the absolute market capitalization in USD. The
// profile reports it in millions of the listing currency; non-USD listings
// go through the currency converter.
func (c *Client) MarketCapUSD(ctx context.Context, ticker string) (float64, error) {
	body, err := c.get(ctx, profilePath, map[string][]string{
		"symbol": {ticker},
		"token":  {c.apiKey},
	})
	if err != nil {
		c.metrics.RecordFetch("finnhub_profile", "error")
		return 0, fmt.Errorf("finnhub profile for %s: %w", ticker, err)
	}

	var profile struct {
		MarketCapitalization *float64 `json:"marketCapitalization"`
		Currency             string   `json:"currency"`
		Error                string   `json:"error"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		c.metrics.RecordFetch("finnhub_profile", "error")
		return 0, models.ParseErrorf("finnhub profile for %s: %v", ticker, err)
	}
	if profile.Error != "" {
		c.metrics.RecordFetch("finnhub_profile", "error")
		return 0, models.UpstreamErrorf("finnhub rejected %s: %s", ticker, profile.Error)
	}
	if profile.MarketCapitalization == nil {
		c.metrics.RecordFetch("finnhub_profile", "error")
		return 0, models.UpstreamErrorf("no market cap for %s", ticker)
	}

	capUSD := *profile.MarketCapitalization * 1e6
	if !strings.EqualFold(profile.Currency, "USD") && profile.Currency != "" {
		rate, err := c.converter.Rate(ctx, profile.Currency, "USD")
		if err != nil {
			c.metrics.RecordFetch("finnhub_profile", "error")
			return 0, fmt.Errorf("convert %s market cap from %s: %w", ticker, profile.Currency, err)
		}
		capUSD *= rate
	}

	c.metrics.RecordFetch("finnhub_profile", "success")
	c.log.Debug("fetched market cap",
		applogger.String("ticker", ticker),
		applogger.Float("market_cap_usd", capUSD),
	)
	return capUSD, nil
}

// TtmEPS returns the trailing-twelve-month earnings per share from the
// metric endpoint. Finnhub answers key/subscription problems with an HTML
// page on HTTP 200, so the body is sniffed before decoding.
func (c *Client) TtmEPS(ctx context.Context, ticker string) (float64, error) {
	body, err := c.get(ctx, metricPath, map[string][]string{
		"symbol": {ticker},
		"metric": {"all"},
		"token":  {c.apiKey},
	})
	if err != nil {
		c.metrics.RecordFetch("finnhub_metric", "error")
		return 0, fmt.Errorf("finnhub metrics for %s: %w", ticker, err)
	}

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		c.metrics.RecordFetch("finnhub_metric", "error")
		return 0, models.UpstreamErrorf("finnhub returned an empty or HTML page for %s; check API key", ticker)
	}

	var resp struct {
		Metric struct {
			EpsTTM *float64 `json:"epsTTM"`
		} `json:"metric"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		c.metrics.RecordFetch("finnhub_metric", "error")
		return 0, models.ParseErrorf("finnhub metrics for %s: %v", ticker, err)
	}
	if resp.Metric.EpsTTM == nil {
		c.metrics.RecordFetch("finnhub_metric", "error")
		return 0, models.UpstreamErrorf("no TTM EPS in metrics for %s", ticker)
	}

	c.metrics.RecordFetch("finnhub_metric", "success")
	return *resp.Metric.EpsTTM, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string) ([]byte, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}, &body)
	return body, err
}
