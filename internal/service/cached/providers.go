package cached

import (
	"context"
	"errors"
	"time"

	"TradeScope/internal/domain/repository"
	"TradeScope/pkg/cache"
	applogger "TradeScope/pkg/logger"
)

// TTLs for the cached fetch layer. Fundamentals move on earnings reports,
// the benchmark proxy on daily closes; both are far slower than the
// request rate, so short TTLs already absorb most of the upstream quota.
type TTLs struct {
	Fundamentals time.Duration
	Benchmark    time.Duration
	Sentiment    time.Duration
}

// Fundamentals wraps a FundamentalsProvider with a cache. Read errors
// other than a miss are logged and treated as a miss; write errors never
// fail the fetch.
type Fundamentals struct {
	next  repository.FundamentalsProvider
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewFundamentals wraps a fundamentals provider.
func NewFundamentals(next repository.FundamentalsProvider, c cache.Service, ttl time.Duration, log *applogger.Logger) *Fundamentals {
	return &Fundamentals{next: next, cache: c, ttl: ttl, log: log}
}

var _ repository.FundamentalsProvider = (*Fundamentals)(nil)

func (f *Fundamentals) MarketCapUSD(ctx context.Context, ticker string) (float64, error) {
	return lookup(ctx, f.cache, "marketcap:"+ticker, f.ttl, f.log, func() (float64, error) {
		return f.next.MarketCapUSD(ctx, ticker)
	})
}

func (f *Fundamentals) TtmEPS(ctx context.Context, ticker string) (float64, error) {
	return lookup(ctx, f.cache, "ttmeps:"+ticker, f.ttl, f.log, func() (float64, error) {
		return f.next.TtmEPS(ctx, ticker)
	})
}

// Shares wraps a SharesProvider with a cache.
type Shares struct {
	next  repository.SharesProvider
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewShares wraps a shares provider.
func NewShares(next repository.SharesProvider, c cache.Service, ttl time.Duration, log *applogger.Logger) *Shares {
	return &Shares{next: next, cache: c, ttl: ttl, log: log}
}

var _ repository.SharesProvider = (*Shares)(nil)

func (s *Shares) OutstandingShares(ctx context.Context, ticker string) (float64, error) {
	return lookup(ctx, s.cache, "shares:"+ticker, s.ttl, s.log, func() (float64, error) {
		return s.next.OutstandingShares(ctx, ticker)
	})
}

// Valuation wraps a ValuationProvider with a cache.
type Valuation struct {
	next  repository.ValuationProvider
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewValuation wraps a valuation provider.
func NewValuation(next repository.ValuationProvider, c cache.Service, ttl time.Duration, log *applogger.Logger) *Valuation {
	return &Valuation{next: next, cache: c, ttl: ttl, log: log}
}

var _ repository.ValuationProvider = (*Valuation)(nil)

func (v *Valuation) PeRatioTTM(ctx context.Context, ticker string) (float64, error) {
	return lookup(ctx, v.cache, "peratio:"+ticker, v.ttl, v.log, func() (float64, error) {
		return v.next.PeRatioTTM(ctx, ticker)
	})
}

// Benchmark wraps a BenchmarkProvider with a cache. The proxy is ticker
// independent, so one entry serves every analysis in the TTL window.
type Benchmark struct {
	next  repository.BenchmarkProvider
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewBenchmark wraps a benchmark provider.
func NewBenchmark(next repository.BenchmarkProvider, c cache.Service, ttl time.Duration, log *applogger.Logger) *Benchmark {
	return &Benchmark{next: next, cache: c, ttl: ttl, log: log}
}

var _ repository.BenchmarkProvider = (*Benchmark)(nil)

func (b *Benchmark) SP500PeProxy(ctx context.Context) (float64, error) {
	return lookup(ctx, b.cache, "benchmark:sp500pe", b.ttl, b.log, func() (float64, error) {
		return b.next.SP500PeProxy(ctx)
	})
}

// Sentiment wraps a SentimentProvider with a cache.
type Sentiment struct {
	next  repository.SentimentProvider
	cache cache.Service
	ttl   time.Duration
	log   *applogger.Logger
}

// NewSentiment wraps a sentiment provider.
func NewSentiment(next repository.SentimentProvider, c cache.Service, ttl time.Duration, log *applogger.Logger) *Sentiment {
	return &Sentiment{next: next, cache: c, ttl: ttl, log: log}
}

var _ repository.SentimentProvider = (*Sentiment)(nil)

func (s *Sentiment) NewsSentiment(ctx context.Context, ticker string) (float64, error) {
	return lookup(ctx, s.cache, "sentiment:"+ticker, s.ttl, s.log, func() (float64, error) {
		return s.next.NewsSentiment(ctx, ticker)
	})
}

func lookup(ctx context.Context, c cache.Service, key string, ttl time.Duration,
	log *applogger.Logger, fetch func() (float64, error)) (float64, error) {
	var cached float64
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	value, err := fetch()
	if err != nil {
		return 0, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return value, nil
}
