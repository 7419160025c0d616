package fundamentals

import (
	"context"
	"errors"
	"testing"

	"TradeScope/internal/domain/models"
	applogger "TradeScope/pkg/logger"
)

type stubFundamentals struct {
	eps    float64
	epsErr error
}

func (s *stubFundamentals) MarketCapUSD(context.Context, string) (float64, error) {
	return 2e12, nil
}

func (s *stubFundamentals) TtmEPS(context.Context, string) (float64, error) {
	return s.eps, s.epsErr
}

type stubIncome struct {
	netIncome float64
	err       error
	calls     int
}

func (s *stubIncome) LatestNetIncome(context.Context, string) (float64, error) {
	s.calls++
	return s.netIncome, s.err
}

func (s *stubIncome) Health(context.Context) error { return nil }

type stubShares struct {
	shares float64
	err    error
}

func (s *stubShares) OutstandingShares(context.Context, string) (float64, error) {
	return s.shares, s.err
}

func newFallback(t *testing.T, next *stubFundamentals, income *stubIncome, shares *stubShares) *EPSFallback {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewEPSFallback(next, income, shares, log)
}

func TestTtmEPSDelegatesWhenUpstreamHasIt(t *testing.T) {
	income := &stubIncome{netIncome: 1e9}
	f := newFallback(t, &stubFundamentals{eps: 6.42}, income, &stubShares{shares: 1e8})

	eps, err := f.TtmEPS(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("TtmEPS: %v", err)
	}
	if eps != 6.42 {
		t.Errorf("eps = %v, want 6.42", eps)
	}
	if income.calls != 0 {
		t.Errorf("income store consulted %d times on the happy path", income.calls)
	}
}

func TestTtmEPSDerivedFromNetIncome(t *testing.T) {
	next := &stubFundamentals{epsErr: models.UpstreamErrorf("epsTTM missing for AAPL")}
	f := newFallback(t, next, &stubIncome{netIncome: 1e9}, &stubShares{shares: 1e8})

	eps, err := f.TtmEPS(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("TtmEPS: %v", err)
	}
	if eps != 10 {
		t.Errorf("eps = %v, want 10", eps)
	}
}

func TestTtmEPSTransportErrorPassesThrough(t *testing.T) {
	transportErr := errors.New("connection refused")
	income := &stubIncome{netIncome: 1e9}
	f := newFallback(t, &stubFundamentals{epsErr: transportErr}, income, &stubShares{shares: 1e8})

	_, err := f.TtmEPS(context.Background(), "AAPL")
	if !errors.Is(err, transportErr) {
		t.Fatalf("err = %v, want transport error", err)
	}
	if income.calls != 0 {
		t.Errorf("income store consulted on a transport error")
	}
}

func TestTtmEPSFallbackFailureSurfacesOriginalError(t *testing.T) {
	next := &stubFundamentals{epsErr: models.UpstreamErrorf("epsTTM missing for AAPL")}
	f := newFallback(t, next, &stubIncome{err: models.UpstreamErrorf("no rows")}, &stubShares{shares: 1e8})

	_, err := f.TtmEPS(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrUpstreamData) {
		t.Fatalf("err = %v, want the original upstream error", err)
	}
}

func TestTtmEPSZeroSharesSurfacesOriginalError(t *testing.T) {
	next := &stubFundamentals{epsErr: models.UpstreamErrorf("epsTTM missing for AAPL")}
	f := newFallback(t, next, &stubIncome{netIncome: 1e9}, &stubShares{shares: 0})

	_, err := f.TtmEPS(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrUpstreamData) {
		t.Fatalf("err = %v, want the original upstream error", err)
	}
}
