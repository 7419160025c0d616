package fmp

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

// Client fetches share counts and ratios from Financial Modeling Prep.
// FMP answers every query with a JSON array; an unknown ticker yields a
// literal "[]" on HTTP 200, which is an upstream-data condition distinct
// from a malformed payload.
type Client struct {
	http    *apphttp.Client
	baseURL string
	apiKey  string
	metrics repository.Metrics
	log     *applogger.Logger
}

// New creates an FMP client.
func New(httpClient *apphttp.Client, baseURL, apiKey string, metrics repository.Metrics, log *applogger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		metrics: metrics,
		log:     log,
	}
}

var (
	_ repository.SharesProvider    = (*Client)(nil)
	_ repository.ValuationProvider = (*Client)(nil)
)

// OutstandingShares returns the outstanding share count from the
// shares-float endpoint.
func (c *Client) OutstandingShares(ctx context.Context, ticker string) (float64, error) {
	first, err := c.getFirst(ctx, "shares-float", ticker, "fmp_shares")
	if err != nil {
		return 0, err
	}

	var rec struct {
		OutstandingShares *float64 `json:"outstandingShares"`
	}
	if err := json.Unmarshal(first, &rec); err != nil {
		c.metrics.RecordFetch("fmp_shares", "error")
		return 0, models.ParseErrorf("fmp shares-float for %s: %v", ticker, err)
	}
	if rec.OutstandingShares == nil {
		c.metrics.RecordFetch("fmp_shares", "error")
		return 0, models.UpstreamErrorf("no outstandingShares for %s", ticker)
	}

	c.metrics.RecordFetch("fmp_shares", "success")
	return *rec.OutstandingShares, nil
}

// PeRatioTTM returns the trailing-twelve-month price-to-earnings ratio
// from the ratios-ttm endpoint.
func (c *Client) PeRatioTTM(ctx context.Context, ticker string) (float64, error) {
	first, err := c.getFirst(ctx, "ratios-ttm", ticker, "fmp_ratios")
	if err != nil {
		return 0, err
	}

	var rec struct {
		PriceToEarningsRatioTTM *float64 `json:"priceToEarningsRatioTTM"`
	}
	if err := json.Unmarshal(first, &rec); err != nil {
		c.metrics.RecordFetch("fmp_ratios", "error")
		return 0, models.ParseErrorf("fmp ratios-ttm for %s: %v", ticker, err)
	}
	if rec.PriceToEarningsRatioTTM == nil {
		c.metrics.RecordFetch("fmp_ratios", "error")
		return 0, models.UpstreamErrorf("no priceToEarningsRatioTTM for %s", ticker)
	}

	c.metrics.RecordFetch("fmp_ratios", "success")
	return *rec.PriceToEarningsRatioTTM, nil
}

// getFirst fetches an FMP endpoint and returns the first element of its
// array body. An empty body or empty array is an upstream-data error.
func (c *Client) getFirst(ctx context.Context, path, ticker, source string) (json.RawMessage, error) {
	var body []byte
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/" + path,
		QueryParams: map[string][]string{
			"symbol": {ticker},
			"apikey": {c.apiKey},
		},
	}, &body)
	if err != nil {
		c.metrics.RecordFetch(source, "error")
		return nil, fmt.Errorf("fmp %s for %s: %w", path, ticker, err)
	}

	if strings.TrimSpace(string(body)) == "" {
		c.metrics.RecordFetch(source, "error")
		return nil, models.UpstreamErrorf("fmp returned no %s data for %s", path, ticker)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		c.metrics.RecordFetch(source, "error")
		return nil, models.ParseErrorf("fmp %s for %s: %v", path, ticker, err)
	}
	if len(elems) == 0 {
		c.metrics.RecordFetch(source, "error")
		return nil, models.UpstreamErrorf("fmp returned no %s data for %s", path, ticker)
	}
	return elems[0], nil
}
