package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	applogger "TradeScope/pkg/logger"

	"github.com/robfig/cron/v3"
)

// EvaluatorOptions configures the scheduled watchlist sweep.
type EvaluatorOptions struct {
	// Schedule is a standard 5-field cron expression.
	Schedule  string
	Watchlist []string
	Duration  int
	Unit      string
	// Throttle is the pause between tickers; the free upstream tier allows
	// roughly 5 requests per minute.
	Throttle time.Duration
}

// Evaluator sweeps the watchlist on a schedule, runs the full analysis for
// each ticker, and publishes an alert when the result crosses the policy:
// statistically significant, or a Buy/Strong Buy category. Per-ticker
// failures are logged and skipped; one bad ticker never aborts the sweep.
type Evaluator struct {
	analyzer  *Analyzer
	publisher repository.AlertPublisher
	log       *applogger.Logger
	opts      EvaluatorOptions

	cron *cron.Cron
}

// NewEvaluator creates a watchlist evaluator.
func NewEvaluator(analyzer *Analyzer, publisher repository.AlertPublisher, log *applogger.Logger, opts EvaluatorOptions) *Evaluator {
	return &Evaluator{
		analyzer:  analyzer,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
}

// Start registers the cron job and begins the schedule.
func (e *Evaluator) Start() error {
	e.cron = cron.New()
	_, err := e.cron.AddFunc(e.opts.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		e.RunSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", e.opts.Schedule, err)
	}
	e.cron.Start()
	e.log.Info("watchlist evaluator started",
		applogger.String("schedule", e.opts.Schedule),
		applogger.Strings("watchlist", e.opts.Watchlist),
	)
	return nil
}

// Stop stops the schedule and waits for a running sweep to finish.
func (e *Evaluator) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
	}
}

// RunSweep analyzes every watchlist ticker once. Exported so an operator
// can trigger an out-of-schedule sweep.
func (e *Evaluator) RunSweep(ctx context.Context) {
	e.log.Info("watchlist sweep starting", applogger.Int("tickers", len(e.opts.Watchlist)))

	for i, ticker := range e.opts.Watchlist {
		if ctx.Err() != nil {
			e.log.Warn("watchlist sweep cancelled", applogger.Error(ctx.Err()))
			return
		}
		if i > 0 && e.opts.Throttle > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.opts.Throttle):
			}
		}

		result, err := e.analyzer.Analyze(ctx, models.AnalyzeRequest{
			Ticker:   ticker,
			Duration: e.opts.Duration,
			Unit:     e.opts.Unit,
		})
		if err != nil {
			e.log.Error("watchlist analysis failed",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
			continue
		}

		if !ShouldAlert(result) {
			e.log.Debug("no alert",
				applogger.String("ticker", ticker),
				applogger.Int("score", result.Score),
			)
			continue
		}

		alert := BuildAlert(result, time.Now().UTC())
		if err := e.publisher.PublishAlert(ctx, alert); err != nil {
			e.log.Error("alert publish failed",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
			continue
		}
		e.log.Info("alert published",
			applogger.String("ticker", ticker),
			applogger.String("type", alert.AlertType),
		)
	}

	e.log.Info("watchlist sweep finished")
}

// ShouldAlert applies the alert policy to an analysis result.
func ShouldAlert(r models.AnalysisResult) bool {
	return r.Significance.Significant || r.Category == "Buy" || r.Category == "Strong Buy"
}

// BuildAlert flattens an analysis result into an alert event.
func BuildAlert(r models.AnalysisResult, now time.Time) models.AlertEvent {
	return models.AlertEvent{
		Ticker:       r.Ticker,
		AlertType:    alertType(r),
		CurrentPrice: r.LatestPrice,
		Score:        r.Score,
		Category:     r.Category,
		Significant:  r.Significance.Significant,
		Message:      r.Significance.Message,
		PeriodValue:  r.Duration,
		PeriodUnit:   r.Unit,
		Timestamp:    now.Format(time.RFC3339),
	}
}

func alertType(r models.AnalysisResult) string {
	switch {
	case r.Significance.Significant && strings.Contains(r.Significance.Message, "change"):
		return "statistical_change"
	case r.Significance.Significant:
		return "statistical_alert"
	case r.Category == "Strong Buy":
		return "strong_buy_signal"
	case r.Category == "Buy":
		return "buy_signal"
	default:
		return "general_signal"
	}
}
