package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/services/significance"
	"TradeScope/pkg/config"
	applogger "TradeScope/pkg/logger"

	"github.com/creasty/defaults"
)

type stubMarket struct {
	series models.PriceSeries
	err    error
	calls  int
}

func (s *stubMarket) DailySeries(context.Context, string) (models.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

type stubFundamentals struct {
	calls    int
	blockCtx bool
}

func (s *stubFundamentals) MarketCapUSD(ctx context.Context, _ string) (float64, error) {
	s.calls++
	if s.blockCtx {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return 2e12, nil
}

func (s *stubFundamentals) TtmEPS(ctx context.Context, _ string) (float64, error) {
	s.calls++
	if s.blockCtx {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return 6, nil
}

type stubShares struct{ calls int }

func (s *stubShares) OutstandingShares(context.Context, string) (float64, error) {
	s.calls++
	return 1e9, nil
}

type stubValuation struct{ calls int }

func (s *stubValuation) PeRatioTTM(context.Context, string) (float64, error) {
	s.calls++
	return 28.4, nil
}

type stubIncome struct{ calls int }

func (s *stubIncome) LatestNetIncome(context.Context, string) (float64, error) {
	s.calls++
	return 9.5e10, nil
}

func (s *stubIncome) Health(context.Context) error { return nil }

type stubBenchmark struct{ calls int }

func (s *stubBenchmark) SP500PeProxy(context.Context) (float64, error) {
	s.calls++
	return 1.1, nil
}

type stubSentiment struct {
	score float64
	err   error
	calls int
}

func (s *stubSentiment) NewsSentiment(context.Context, string) (float64, error) {
	s.calls++
	return s.score, s.err
}

type stubScorer struct {
	gotFund models.Fundamentals
	gotInd  models.IndicatorSet
	score   int
	cat     string
	err     error
}

func (s *stubScorer) Score(_ context.Context, ind models.IndicatorSet, fund models.Fundamentals) (int, string, *float64, error) {
	s.gotInd = ind
	s.gotFund = fund
	return s.score, s.cat, nil, s.err
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)     {}
func (nopMetrics) RecordKeyRotation(string)       {}
func (nopMetrics) RecordAnalysisDuration(float64) {}
func (nopMetrics) RecordScore(string, float64)    {}

func risingSeries(n int) models.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Close:  100 + float64(i),
			Volume: 1e6,
		}
	}
	return models.PriceSeries{Points: points}
}

func newTestAnalyzer(t *testing.T, market *stubMarket, scorer *stubScorer, opts AnalyzerOptions,
	fund *stubFundamentals, shares *stubShares, val *stubValuation,
	bench *stubBenchmark, sent *stubSentiment) *Analyzer {
	t.Helper()

	var sigCfg config.SignificanceConfig
	if err := defaults.Set(&sigCfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	return NewAnalyzer(market, fund, shares, val, bench, sent, nil,
		significance.New(sigCfg), scorer, nopMetrics{}, log, opts)
}

func TestAnalyzeValidation(t *testing.T) {
	a := newTestAnalyzer(t, &stubMarket{series: risingSeries(10)}, &stubScorer{}, AnalyzerOptions{},
		&stubFundamentals{}, &stubShares{}, &stubValuation{}, &stubBenchmark{}, &stubSentiment{})

	cases := []models.AnalyzeRequest{
		{Ticker: "", Duration: 3, Unit: "month"},
		{Ticker: "AAPL", Duration: 0, Unit: "month"},
		{Ticker: "AAPL", Duration: -1, Unit: "month"},
		{Ticker: "AAPL", Duration: 3, Unit: "fortnight"},
	}
	for _, req := range cases {
		if _, err := a.Analyze(context.Background(), req); !errors.Is(err, models.ErrValidation) {
			t.Errorf("%+v: err = %v, want ErrValidation", req, err)
		}
	}
}

func TestAnalyzeHeuristicPath(t *testing.T) {
	market := &stubMarket{series: risingSeries(60)}
	scorer := &stubScorer{score: 70, cat: "Buy"}
	fund := &stubFundamentals{}
	sent := &stubSentiment{score: 0.4}

	a := newTestAnalyzer(t, market, scorer,
		AnalyzerOptions{FetchSentiment: true, FetchTimeout: time.Second},
		fund, &stubShares{}, &stubValuation{}, &stubBenchmark{}, sent)

	res, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "aapl", Duration: 2, Unit: "Week",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Ticker != "AAPL" || res.Unit != "week" {
		t.Errorf("normalized request = %q/%q", res.Ticker, res.Unit)
	}
	if res.LatestPrice != 159 {
		t.Errorf("latest price = %v, want 159", res.LatestPrice)
	}
	if res.Score != 70 || res.Category != "Buy" {
		t.Errorf("score = %d/%q", res.Score, res.Category)
	}
	if len(res.HistoricalPrices) != 60 {
		t.Errorf("historical prices = %d, want full series", len(res.HistoricalPrices))
	}
	if res.Indicators.Sma50 == nil || res.Indicators.Rsi == nil {
		t.Error("indicators not computed")
	}
	if res.Significance.Message == "" {
		t.Error("significance message missing")
	}
	if res.Indicators.PercentChangeFromMean == nil {
		t.Error("percent change from mean not carried into the indicators")
	}
	if res.Fundamentals != nil {
		t.Errorf("fundamentals = %+v, want none on the heuristic path", res.Fundamentals)
	}

	// Heuristic mode must not touch the fundamentals providers, but the
	// sentiment score has to reach the scorer.
	if fund.calls != 0 {
		t.Errorf("fundamentals calls = %d, want 0", fund.calls)
	}
	if sent.calls != 1 {
		t.Errorf("sentiment calls = %d, want 1", sent.calls)
	}
	if scorer.gotFund.Sentiment == nil || *scorer.gotFund.Sentiment != 0.4 {
		t.Errorf("scorer fundamentals sentiment = %v, want 0.4", scorer.gotFund.Sentiment)
	}
}

func TestAnalyzeRemotePathFetchesFundamentals(t *testing.T) {
	market := &stubMarket{series: risingSeries(60)}
	scorer := &stubScorer{score: 1, cat: "Outperform"}
	fund := &stubFundamentals{}
	shares := &stubShares{}
	val := &stubValuation{}
	bench := &stubBenchmark{}

	a := newTestAnalyzer(t, market, scorer,
		AnalyzerOptions{FetchFundamentals: true, FetchTimeout: time.Second},
		fund, shares, val, bench, &stubSentiment{})

	res, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "AAPL", Duration: 1, Unit: "month",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if fund.calls != 2 {
		t.Errorf("fundamentals calls = %d, want 2 (market cap + EPS)", fund.calls)
	}
	if shares.calls != 1 || val.calls != 1 || bench.calls != 1 {
		t.Errorf("shares/valuation/bench calls = %d/%d/%d, want 1/1/1",
			shares.calls, val.calls, bench.calls)
	}
	if scorer.gotFund.MarketCapUSD != 2e12 || scorer.gotFund.SP500PeProxy != 1.1 {
		t.Errorf("scorer fundamentals = %+v", scorer.gotFund)
	}
	if scorer.gotFund.PeRatioTTM != 28.4 {
		t.Errorf("scorer P/E = %v, want 28.4", scorer.gotFund.PeRatioTTM)
	}
	if res.Fundamentals == nil {
		t.Fatal("fundamentals missing from the result")
	}
	if res.Fundamentals.PeRatioTTM != 28.4 || res.Fundamentals.MarketCapUSD != 2e12 {
		t.Errorf("result fundamentals = %+v", res.Fundamentals)
	}
}

func TestAnalyzeNetIncomeLegNeedsStore(t *testing.T) {
	var sigCfg config.SignificanceConfig
	if err := defaults.Set(&sigCfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	market := &stubMarket{series: risingSeries(60)}
	scorer := &stubScorer{score: 1, cat: "Outperform"}
	income := &stubIncome{}
	opts := AnalyzerOptions{FetchFundamentals: true, FetchTimeout: time.Second}

	a := NewAnalyzer(market, &stubFundamentals{}, &stubShares{}, &stubValuation{},
		&stubBenchmark{}, &stubSentiment{}, income,
		significance.New(sigCfg), scorer, nopMetrics{}, log, opts)

	res, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "AAPL", Duration: 1, Unit: "month",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if income.calls != 1 {
		t.Errorf("income calls = %d, want 1", income.calls)
	}
	if res.Fundamentals == nil || res.Fundamentals.LatestNetIncome != 9.5e10 {
		t.Errorf("result fundamentals = %+v, want joined net income", res.Fundamentals)
	}

	// Without a fundamentals database the leg is skipped, not failed.
	a = NewAnalyzer(market, &stubFundamentals{}, &stubShares{}, &stubValuation{},
		&stubBenchmark{}, &stubSentiment{}, nil,
		significance.New(sigCfg), scorer, nopMetrics{}, log, opts)

	res, err = a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "AAPL", Duration: 1, Unit: "month",
	})
	if err != nil {
		t.Fatalf("Analyze without store: %v", err)
	}
	if res.Fundamentals == nil || res.Fundamentals.LatestNetIncome != 0 {
		t.Errorf("result fundamentals = %+v, want zero net income", res.Fundamentals)
	}
}

func TestAnalyzeFirstFetchErrorCancelsTheRest(t *testing.T) {
	marketErr := fmt.Errorf("%w: quota", models.ErrRateLimitExhausted)
	market := &stubMarket{err: marketErr}
	fund := &stubFundamentals{blockCtx: true}

	a := newTestAnalyzer(t, market, &stubScorer{},
		AnalyzerOptions{FetchFundamentals: true},
		fund, &stubShares{}, &stubValuation{}, &stubBenchmark{}, &stubSentiment{})

	done := make(chan error, 1)
	go func() {
		_, err := a.Analyze(context.Background(), models.AnalyzeRequest{
			Ticker: "AAPL", Duration: 3, Unit: "month",
		})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, models.ErrRateLimitExhausted) {
			t.Fatalf("err = %v, want the series fetch error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not cancel blocked fetches")
	}
}

func TestAnalyzeScorerErrorFailsRequest(t *testing.T) {
	a := newTestAnalyzer(t, &stubMarket{series: risingSeries(40)},
		&stubScorer{err: models.ErrPredictionService}, AnalyzerOptions{},
		&stubFundamentals{}, &stubShares{}, &stubValuation{}, &stubBenchmark{}, &stubSentiment{})

	_, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "AAPL", Duration: 3, Unit: "day",
	})
	if !errors.Is(err, models.ErrPredictionService) {
		t.Fatalf("err = %v, want ErrPredictionService", err)
	}
}

func TestAnalyzeInsufficientHistory(t *testing.T) {
	market := &stubMarket{err: models.ErrInsufficientHistory}
	a := newTestAnalyzer(t, market, &stubScorer{}, AnalyzerOptions{},
		&stubFundamentals{}, &stubShares{}, &stubValuation{}, &stubBenchmark{}, &stubSentiment{})

	_, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		Ticker: "AAPL", Duration: 3, Unit: "month",
	})
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}
