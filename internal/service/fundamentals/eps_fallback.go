package fundamentals

import (
	"context"
	"errors"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/domain/repository"
	applogger "TradeScope/pkg/logger"
)

// EPSFallback decorates a fundamentals provider with a derived TTM EPS:
// when the upstream metric is missing, EPS is computed as the latest
// reported net income over outstanding shares. Only upstream-data
// failures trigger the fallback; transport errors pass through.
type EPSFallback struct {
	next   repository.FundamentalsProvider
	income repository.IncomeStore
	shares repository.SharesProvider
	log    *applogger.Logger
}

// NewEPSFallback creates the decorator.
func NewEPSFallback(next repository.FundamentalsProvider, income repository.IncomeStore,
	shares repository.SharesProvider, log *applogger.Logger) *EPSFallback {
	return &EPSFallback{next: next, income: income, shares: shares, log: log}
}

var _ repository.FundamentalsProvider = (*EPSFallback)(nil)

func (f *EPSFallback) MarketCapUSD(ctx context.Context, ticker string) (float64, error) {
	return f.next.MarketCapUSD(ctx, ticker)
}

func (f *EPSFallback) TtmEPS(ctx context.Context, ticker string) (float64, error) {
	eps, err := f.next.TtmEPS(ctx, ticker)
	if err == nil {
		return eps, nil
	}
	if !errors.Is(err, models.ErrUpstreamData) {
		return 0, err
	}

	netIncome, ierr := f.income.LatestNetIncome(ctx, ticker)
	if ierr != nil {
		return 0, err
	}
	shares, serr := f.shares.OutstandingShares(ctx, ticker)
	if serr != nil || shares <= 0 {
		return 0, err
	}

	f.log.Warn("ttm eps missing upstream, derived from net income",
		applogger.String("ticker", ticker),
	)
	return netIncome / shares, nil
}
