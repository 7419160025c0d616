package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	apphttp "TradeScope/pkg/http"
)

// Converter resolves exchange rates via the exchangerate.host convert
// endpoint. No API key is required.
type Converter struct {
	http    *apphttp.Client
	baseURL string
}

// New creates a Converter.
func New(httpClient *apphttp.Client, baseURL string) *Converter {
	return &Converter{http: httpClient, baseURL: baseURL}
}

var _ repository.CurrencyConverter = (*Converter)(nil)

// Rate returns the conversion rate from one ISO currency code to another.
// Identity pairs short-circuit to 1 without a network call.
func (c *Converter) Rate(ctx context.Context, from, to string) (float64, error) {
	if strings.EqualFold(from, to) {
		return 1, nil
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/convert",
		QueryParams: map[string][]string{
			"from": {strings.ToUpper(from)},
			"to":   {strings.ToUpper(to)},
		},
	}, &body)
	if err != nil {
		return 0, fmt.Errorf("exchange rate %s->%s: %w", from, to, err)
	}

	var resp struct {
		Info struct {
			Rate *float64 `json:"rate"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, models.ParseErrorf("exchange rate %s->%s: %v", from, to, err)
	}
	if resp.Info.Rate == nil {
		return 0, models.UpstreamErrorf("no rate for %s->%s", from, to)
	}
	return *resp.Info.Rate, nil
}
