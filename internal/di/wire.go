//go:build wireinject
// +build wireinject

package di

import (
	"TradeScope/pkg/config"
	"TradeScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideCache,
		ProvideKeyPools,

		// Upstream providers
		ProvideAlphaVantage,
		ProvideMarketData,
		ProvideBenchmark,
		ProvideSentiment,
		ProvideCurrencyConverter,
		ProvideFundamentals,
		ProvideFmp,
		ProvideShares,
		ProvideValuation,

		// Analysis pipeline
		ProvideSignificance,
		ProvideScorer,
		ProvideAnalyzer,

		// Persistence and alerting
		ProvideIncomeStore,
		ProvideAlertPublisher,
		ProvideEvaluator,

		// HTTP surface and application
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
