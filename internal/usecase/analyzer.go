package usecase

import (
	"context"
	"strings"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	"TradeScope/internal/domain/service"
	"TradeScope/internal/services/indicators"
	"TradeScope/internal/services/significance"
	applogger "TradeScope/pkg/logger"
	"TradeScope/pkg/util"

	"golang.org/x/sync/errgroup"
)

// AnalyzerOptions tunes the orchestration, not the analysis itself.
type AnalyzerOptions struct {
	// FetchTimeout bounds each individual upstream fetch.
	FetchTimeout time.Duration
	// FetchFundamentals controls the fundamentals fan-out (market cap, EPS,
	// shares, P/E ratio, net income, benchmark). The remote scorer requires
	// them; the heuristic path skips them to preserve upstream quota.
	FetchFundamentals bool
	// FetchSentiment controls the news-sentiment fetch for the heuristic
	// scorer.
	FetchSentiment bool
}

// Analyzer runs one full analysis: fan out the upstream fetches, join,
// derive indicators, test significance, and score. All fetches must
// succeed; the first failure cancels the rest and fails the request with
// no partial result.
type Analyzer struct {
	market       repository.MarketDataProvider
	fundamentals repository.FundamentalsProvider
	shares       repository.SharesProvider
	valuation    repository.ValuationProvider
	benchmark    repository.BenchmarkProvider
	sentiment    repository.SentimentProvider
	income       repository.IncomeStore
	tester       *significance.Tester
	scorer       service.Scorer
	metrics      repository.Metrics
	log          *applogger.Logger
	opts         AnalyzerOptions
}

// NewAnalyzer wires the orchestrator. The income store may be nil; the
// net-income leg is skipped when no fundamentals database is configured.
func NewAnalyzer(
	market repository.MarketDataProvider,
	fundamentals repository.FundamentalsProvider,
	shares repository.SharesProvider,
	valuation repository.ValuationProvider,
	benchmark repository.BenchmarkProvider,
	sentiment repository.SentimentProvider,
	income repository.IncomeStore,
	tester *significance.Tester,
	scorer service.Scorer,
	metrics repository.Metrics,
	log *applogger.Logger,
	opts AnalyzerOptions,
) *Analyzer {
	return &Analyzer{
		market:       market,
		fundamentals: fundamentals,
		shares:       shares,
		valuation:    valuation,
		benchmark:    benchmark,
		sentiment:    sentiment,
		income:       income,
		tester:       tester,
		scorer:       scorer,
		metrics:      metrics,
		log:          log,
		opts:         opts,
	}
}

var validUnits = map[string]bool{"day": true, "week": true, "month": true, "year": true}

// Analyze validates the request and runs the full pipeline.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalyzeRequest) (models.AnalysisResult, error) {
	start := time.Now()

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	unit := strings.ToLower(strings.TrimSpace(req.Unit))
	switch {
	case ticker == "":
		return models.AnalysisResult{}, models.ValidationErrorf("ticker is required")
	case req.Duration <= 0:
		return models.AnalysisResult{}, models.ValidationErrorf("duration must be positive, got %d", req.Duration)
	case !validUnits[unit]:
		return models.AnalysisResult{}, models.ValidationErrorf("unknown unit %q", req.Unit)
	}

	series, fund, err := a.fetchAll(ctx, ticker)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	ind := indicators.Compute(series)

	// The statistical window is anchored on the newest data point, not the
	// wall clock, so stale feeds stay internally consistent.
	latest, _ := series.Latest()
	windowStart, err := util.WindowStart(latest.Date, req.Duration, unit)
	if err != nil {
		return models.AnalysisResult{}, models.ValidationErrorf("%v", err)
	}
	sig := a.tester.Test(series, latest.Close, windowStart, latest.Date, req.Duration, unit)
	ind.PercentChangeFromMean = sig.PercentChangeFromMean

	score, category, probability, err := a.scorer.Score(ctx, ind, fund)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	a.metrics.RecordAnalysisDuration(time.Since(start).Seconds())
	a.metrics.RecordScore(ticker, float64(score))
	a.log.Info("analysis complete",
		applogger.String("ticker", ticker),
		applogger.Int("score", score),
		applogger.String("category", category),
		applogger.Dur("elapsed", time.Since(start)),
	)

	var fundOut *models.Fundamentals
	if a.opts.FetchFundamentals {
		joined := fund
		fundOut = &joined
	}

	return models.AnalysisResult{
		Ticker:           ticker,
		Duration:         req.Duration,
		Unit:             unit,
		LatestPrice:      latest.Close,
		Indicators:       ind,
		Significance:     sig.Significance,
		Fundamentals:     fundOut,
		Score:            score,
		Category:         category,
		Probability:      probability,
		HistoricalPrices: series.Points,
	}, nil
}

// fetchAll fans out every required upstream fetch and joins them. The
// series fetch always runs; the fundamentals and sentiment legs run per
// the options. Cancellation propagates through the group context, so the
// first failure stops in-flight work.
func (a *Analyzer) fetchAll(ctx context.Context, ticker string) (models.PriceSeries, models.Fundamentals, error) {
	g, gctx := errgroup.WithContext(ctx)

	var series models.PriceSeries
	var fund models.Fundamentals

	g.Go(func() error {
		return a.withTimeout(gctx, func(fctx context.Context) error {
			var err error
			series, err = a.market.DailySeries(fctx, ticker)
			return err
		})
	})

	if a.opts.FetchFundamentals {
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				var err error
				fund.MarketCapUSD, err = a.fundamentals.MarketCapUSD(fctx, ticker)
				return err
			})
		})
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				var err error
				fund.TtmEPS, err = a.fundamentals.TtmEPS(fctx, ticker)
				return err
			})
		})
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				var err error
				fund.SharesOutstanding, err = a.shares.OutstandingShares(fctx, ticker)
				return err
			})
		})
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				var err error
				fund.PeRatioTTM, err = a.valuation.PeRatioTTM(fctx, ticker)
				return err
			})
		})
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				var err error
				fund.SP500PeProxy, err = a.benchmark.SP500PeProxy(fctx)
				return err
			})
		})
		if a.income != nil {
			g.Go(func() error {
				return a.withTimeout(gctx, func(fctx context.Context) error {
					var err error
					fund.LatestNetIncome, err = a.income.LatestNetIncome(fctx, ticker)
					return err
				})
			})
		}
	}

	if a.opts.FetchSentiment && a.sentiment != nil {
		g.Go(func() error {
			return a.withTimeout(gctx, func(fctx context.Context) error {
				score, err := a.sentiment.NewsSentiment(fctx, ticker)
				if err != nil {
					return err
				}
				fund.Sentiment = models.Float(score)
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return models.PriceSeries{}, models.Fundamentals{}, err
	}
	return series, fund, nil
}

func (a *Analyzer) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	if a.opts.FetchTimeout <= 0 {
		return fn(ctx)
	}
	fctx, cancel := context.WithTimeout(ctx, a.opts.FetchTimeout)
	defer cancel()
	return fn(fctx)
}
