package repository

import (
	"context"

	"TradeScope/internal/domain/models"
)

// MarketDataProvider serves the daily close/volume series for a ticker.
type MarketDataProvider interface {
	DailySeries(ctx context.Context, ticker string) (models.PriceSeries, error)
}

// BenchmarkProvider serves the S&P 500 P/E proxy (latest benchmark close over
// the SMA of the available compact window).
type BenchmarkProvider interface {
	SP500PeProxy(ctx context.Context) (float64, error)
}

// SentimentProvider serves the latest news sentiment score for a ticker.
type SentimentProvider interface {
	NewsSentiment(ctx context.Context, ticker string) (float64, error)
}

// FundamentalsProvider serves per-ticker fundamentals from the company
// profile and metric endpoints.
type FundamentalsProvider interface {
	MarketCapUSD(ctx context.Context, ticker string) (float64, error)
	TtmEPS(ctx context.Context, ticker string) (float64, error)
}

// SharesProvider serves the outstanding share count.
type SharesProvider interface {
	OutstandingShares(ctx context.Context, ticker string) (float64, error)
}

// ValuationProvider serves trailing valuation ratios.
type ValuationProvider interface {
	PeRatioTTM(ctx context.Context, ticker string) (float64, error)
}

// CurrencyConverter resolves an exchange rate between two ISO currency
// codes. Identity pairs resolve to 1 without a network call.
type CurrencyConverter interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// IncomeStore serves the latest reported common net income from the
// fundamentals database.
type IncomeStore interface {
	LatestNetIncome(ctx context.Context, ticker string) (float64, error)
	Health(ctx context.Context) error
}

// AlertPublisher emits alert events produced by the watchlist evaluator.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert models.AlertEvent) error
	Close() error
}

// Metrics abstracts the metrics backend so services do not depend on
// Prometheus directly.
type Metrics interface {
	RecordFetch(source, outcome string)
	RecordKeyRotation(pool string)
	RecordAnalysisDuration(seconds float64)
	RecordScore(ticker string, score float64)
}
