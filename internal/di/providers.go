package di

import (
	"context"
	"fmt"
	"time"

	"TradeScope/internal/domain/repository"
	"TradeScope/internal/domain/service"
	"TradeScope/internal/handler/api"
	internalrepo "TradeScope/internal/repository"
	"TradeScope/internal/service/alphavantage"
	"TradeScope/internal/service/cached"
	"TradeScope/internal/service/currency"
	"TradeScope/internal/service/finnhub"
	"TradeScope/internal/service/fmp"
	"TradeScope/internal/service/fundamentals"
	"TradeScope/internal/service/keypool"
	"TradeScope/internal/service/predictor"
	"TradeScope/internal/services/scoring"
	"TradeScope/internal/services/significance"
	"TradeScope/internal/usecase"
	"TradeScope/pkg/cache"
	pkgch "TradeScope/pkg/clickhouse"
	"TradeScope/pkg/config"
	apphttp "TradeScope/pkg/http"
	pkgkafka "TradeScope/pkg/kafka"
	applogger "TradeScope/pkg/logger"
	"TradeScope/pkg/metrics"
	"TradeScope/pkg/server"
)

// Pools bundles the two API key pools so wire can inject them as one value.
type Pools struct {
	Primary   *keypool.Pool
	Benchmark *keypool.Pool
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideKeyPools builds the primary and benchmark key pools.
func ProvideKeyPools(cfg *config.Config) (Pools, error) {
	primary, err := keypool.New("primary", cfg.AlphaVantage.Keys)
	if err != nil {
		return Pools{}, fmt.Errorf("primary pool: %w", err)
	}
	benchmark, err := keypool.New("benchmark", cfg.AlphaVantage.BenchmarkKeys)
	if err != nil {
		return Pools{}, fmt.Errorf("benchmark pool: %w", err)
	}
	return Pools{Primary: primary, Benchmark: benchmark}, nil
}

// ProvideHTTPClient creates the shared fetch client with the outbound
// rate limit. The Alpha Vantage free tier allows ~5 requests/minute per
// key; the limiter keeps bursts from burning a whole pool at once.
func ProvideHTTPClient(cfg *config.Config) *apphttp.Client {
	return apphttp.NewClient(
		apphttp.WithTimeout(cfg.Fetch.Timeout),
		apphttp.WithRateLimit(cfg.Fetch.RequestsPerSec),
	)
}

// ProvideCache creates the cache backend: Redis when enabled, otherwise
// in-process memory.
func ProvideCache(cfg *config.Config, log *applogger.Logger) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	log.Info("redis cache connected", applogger.String("addr", cfg.Cache.Redis.Addr))
	return c, nil
}

// ProvideAlphaVantage creates the Alpha Vantage client with the retry
// policy selected by configuration.
func ProvideAlphaVantage(cfg *config.Config, httpClient *apphttp.Client, pools Pools,
	m repository.Metrics, log *applogger.Logger) *alphavantage.Client {
	policy := alphavantage.NoDelay
	if cfg.Fetch.RetryBackoff == "exponential" {
		policy = alphavantage.ExponentialDelay
	}
	return alphavantage.New(httpClient, cfg.AlphaVantage.BaseURL,
		pools.Primary, pools.Benchmark, cfg.AlphaVantage.BenchmarkTicker,
		m, log, alphavantage.WithRetryPolicy(policy))
}

// ProvideMarketData exposes the daily series fetch. The series is never
// cached: the latest close is the whole point of the request.
func ProvideMarketData(av *alphavantage.Client) repository.MarketDataProvider {
	return av
}

// ProvideBenchmark wraps the benchmark proxy in the cache layer.
func ProvideBenchmark(av *alphavantage.Client, c cache.Service, cfg *config.Config,
	log *applogger.Logger) repository.BenchmarkProvider {
	return cached.NewBenchmark(av, c, cfg.Cache.TTL.Benchmark, log)
}

// ProvideSentiment wraps news sentiment in the cache layer.
func ProvideSentiment(av *alphavantage.Client, c cache.Service, cfg *config.Config,
	log *applogger.Logger) repository.SentimentProvider {
	return cached.NewSentiment(av, c, cfg.Cache.TTL.Sentiment, log)
}

// ProvideCurrencyConverter creates the exchange-rate client.
func ProvideCurrencyConverter(cfg *config.Config, httpClient *apphttp.Client) repository.CurrencyConverter {
	return currency.New(httpClient, cfg.Currency.BaseURL)
}

// ProvideFundamentals wraps the Finnhub client in the cache layer, with
// the net-income EPS fallback inside the cache when the income store is
// wired.
func ProvideFundamentals(cfg *config.Config, httpClient *apphttp.Client, conv repository.CurrencyConverter,
	income repository.IncomeStore, shares repository.SharesProvider,
	c cache.Service, m repository.Metrics, log *applogger.Logger) repository.FundamentalsProvider {
	var provider repository.FundamentalsProvider = finnhub.New(httpClient, cfg.Finnhub.BaseURL, cfg.Finnhub.APIKey, conv, m, log)
	if income != nil {
		provider = fundamentals.NewEPSFallback(provider, income, shares, log)
	}
	return cached.NewFundamentals(provider, c, cfg.Cache.TTL.Fundamentals, log)
}

// ProvideFmp creates the FMP client shared by the shares and valuation
// lookups.
func ProvideFmp(cfg *config.Config, httpClient *apphttp.Client,
	m repository.Metrics, log *applogger.Logger) *fmp.Client {
	return fmp.New(httpClient, cfg.Fmp.BaseURL, cfg.Fmp.APIKey, m, log)
}

// ProvideShares wraps the FMP share count in the cache layer.
func ProvideShares(cfg *config.Config, client *fmp.Client, c cache.Service,
	log *applogger.Logger) repository.SharesProvider {
	return cached.NewShares(client, c, cfg.Cache.TTL.Fundamentals, log)
}

// ProvideValuation wraps the FMP TTM P/E ratio in the cache layer.
func ProvideValuation(cfg *config.Config, client *fmp.Client, c cache.Service,
	log *applogger.Logger) repository.ValuationProvider {
	return cached.NewValuation(client, c, cfg.Cache.TTL.Fundamentals, log)
}

// ProvideScorer selects the scoring path: the local heuristic or the
// external prediction model.
func ProvideScorer(cfg *config.Config, log *applogger.Logger) service.Scorer {
	if cfg.Scoring.Mode == "remote" {
		client := apphttp.NewClient(apphttp.WithTimeout(cfg.Predictor.Timeout))
		p := predictor.New(client, cfg.Predictor.BaseURL, cfg.Predictor.MaxAttempts, log)
		return scoring.NewRemote(p, cfg.Predictor.HorizonDays)
	}
	return scoring.NewHeuristic(cfg.Scoring)
}

// ProvideSignificance creates the deviation tester.
func ProvideSignificance(cfg *config.Config) *significance.Tester {
	return significance.New(cfg.Significance)
}

// ProvideAnalyzer wires the orchestrator.
func ProvideAnalyzer(
	cfg *config.Config,
	market repository.MarketDataProvider,
	fundamentals repository.FundamentalsProvider,
	shares repository.SharesProvider,
	valuation repository.ValuationProvider,
	benchmark repository.BenchmarkProvider,
	sentiment repository.SentimentProvider,
	income repository.IncomeStore,
	tester *significance.Tester,
	scorer service.Scorer,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Analyzer {
	remote := cfg.Scoring.Mode == "remote"
	return usecase.NewAnalyzer(market, fundamentals, shares, valuation, benchmark, sentiment,
		income, tester, scorer, m, log, usecase.AnalyzerOptions{
			FetchTimeout:      cfg.Fetch.Timeout,
			FetchFundamentals: remote,
			FetchSentiment:    !remote && cfg.Sentiment.Enabled,
		})
}

// ProvideIncomeStore connects ClickHouse when enabled; a nil store
// disables the income lookup and the health probe degrades gracefully.
func ProvideIncomeStore(cfg *config.Config, log *applogger.Logger) (repository.IncomeStore, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := internalrepo.NewClickHouseIncomeStore(ctx, client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Info("clickhouse connected", applogger.String("database", cfg.ClickHouse.Database))
	return store, func() { _ = client.Close() }, nil
}

// ProvideAlertPublisher creates the Kafka publisher when enabled; the
// logging fallback keeps the evaluator wiring unconditional.
func ProvideAlertPublisher(cfg *config.Config, log *applogger.Logger) (repository.AlertPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewLogAlertPublisher(log), func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	pub := internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
	log.Info("kafka alert publisher ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.AlertTopic),
	)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideEvaluator creates the watchlist evaluator; nil when disabled.
func ProvideEvaluator(cfg *config.Config, analyzer *usecase.Analyzer,
	publisher repository.AlertPublisher, log *applogger.Logger) *usecase.Evaluator {
	if !cfg.Evaluator.Enabled {
		return nil
	}
	return usecase.NewEvaluator(analyzer, publisher, log, usecase.EvaluatorOptions{
		Schedule:  cfg.Evaluator.Schedule,
		Watchlist: cfg.Evaluator.Watchlist,
		Duration:  cfg.Evaluator.Duration,
		Unit:      cfg.Evaluator.Unit,
		Throttle:  15 * time.Second,
	})
}

// ProvideHandler creates the HTTP handler. A disabled evaluator must not
// become a non-nil interface holding a nil pointer.
func ProvideHandler(log *applogger.Logger, analyzer *usecase.Analyzer,
	evaluator *usecase.Evaluator, income repository.IncomeStore) *api.AnalyzeHandler {
	var sweeper api.SweepRunner
	if evaluator != nil {
		sweeper = evaluator
	}
	return api.NewAnalyzeHandler(log, analyzer, sweeper, income)
}

// ProvideApp assembles the application.
func ProvideApp(cfg *config.Config, log *applogger.Logger, handler *api.AnalyzeHandler,
	evaluator *usecase.Evaluator, c cache.Service) *server.App {
	return server.New(cfg, log, handler, evaluator, c)
}
