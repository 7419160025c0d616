package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"TradeScope/internal/domain/models"
	"TradeScope/internal/service/keypool"
	apphttp "TradeScope/pkg/http"
	applogger "TradeScope/pkg/logger"
)

type recordingMetrics struct {
	fetches   map[string]int
	rotations map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{fetches: map[string]int{}, rotations: map[string]int{}}
}

func (m *recordingMetrics) RecordFetch(source, outcome string) {
	m.fetches[source+"/"+outcome]++
}
func (m *recordingMetrics) RecordKeyRotation(pool string)       { m.rotations[pool]++ }
func (m *recordingMetrics) RecordAnalysisDuration(float64)      {}
func (m *recordingMetrics) RecordScore(string, float64)         {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func seriesBody(records map[string][2]string) string {
	body := `{"Time Series (Daily)":{`
	first := true
	for date, rec := range records {
		if !first {
			body += ","
		}
		first = false
		body += fmt.Sprintf(`%q:{"4. close":%q,"5. volume":%q}`, date, rec[0], rec[1])
	}
	return body + "}}"
}

func newTestClient(t *testing.T, url string, primaryKeys, benchmarkKeys []string, m *recordingMetrics) *Client {
	t.Helper()
	primary, err := keypool.New("primary", primaryKeys)
	if err != nil {
		t.Fatalf("primary pool: %v", err)
	}
	benchmark, err := keypool.New("benchmark", benchmarkKeys)
	if err != nil {
		t.Fatalf("benchmark pool: %v", err)
	}
	return New(apphttp.NewClient(), url, primary, benchmark, "SPY", m, testLogger(t))
}

func TestDailySeriesRotatesOnRateLimitSentinel(t *testing.T) {
	var keysSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("apikey")
		keysSeen = append(keysSeen, key)
		if key != "k3" {
			fmt.Fprint(w, `{"Note":"API call frequency exceeded"}`)
			return
		}
		fmt.Fprint(w, seriesBody(map[string][2]string{
			"2024-03-14": {"100.0", "1000"},
			"2024-03-15": {"101.0", "1100"},
		}))
	}))
	defer srv.Close()

	m := newRecordingMetrics()
	c := newTestClient(t, srv.URL, []string{"k1", "k2", "k3"}, []string{"b1"}, m)

	series, err := c.DailySeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("DailySeries: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("series length = %d, want 2", series.Len())
	}

	want := []string{"k1", "k2", "k3"}
	if len(keysSeen) != len(want) {
		t.Fatalf("attempts = %v, want %v", keysSeen, want)
	}
	for i, k := range want {
		if keysSeen[i] != k {
			t.Errorf("attempt %d used key %q, want %q", i+1, keysSeen[i], k)
		}
	}
	if m.rotations["primary"] != 2 {
		t.Errorf("rotations = %d, want 2", m.rotations["primary"])
	}
}

func TestDailySeriesExhaustsPoolAfterExactlyPoolSizeAttempts(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"Information":"Thank you for using Alpha Vantage! Your call frequency is exceeded."}`)
	}))
	defer srv.Close()

	m := newRecordingMetrics()
	c := newTestClient(t, srv.URL, []string{"k1", "k2", "k3"}, []string{"b1"}, m)

	_, err := c.DailySeries(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrRateLimitExhausted) {
		t.Fatalf("err = %v, want ErrRateLimitExhausted", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want exactly 3", attempts)
	}
	// The last failing attempt must not rotate past the pool.
	if m.rotations["primary"] != 2 {
		t.Errorf("rotations = %d, want 2", m.rotations["primary"])
	}
}

func TestDailySeriesErrorMessageIsFatalWithoutRotation(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, `{"Error Message":"Invalid API call. Please retry or visit the documentation."}`)
	}))
	defer srv.Close()

	m := newRecordingMetrics()
	c := newTestClient(t, srv.URL, []string{"k1", "k2", "k3"}, []string{"b1"}, m)

	_, err := c.DailySeries(context.Background(), "NOPE")
	if !errors.Is(err, models.ErrUpstreamData) {
		t.Fatalf("err = %v, want ErrUpstreamData", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no rotation on upstream rejection)", attempts)
	}
	if m.rotations["primary"] != 0 {
		t.Errorf("rotations = %d, want 0", m.rotations["primary"])
	}
}

func TestDailySeriesNonJSONBodyFailsImmediately(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		fmt.Fprint(w, "<html>service unavailable</html>")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1", "k2"}, []string{"b1"}, newRecordingMetrics())

	_, err := c.DailySeries(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestDailySeriesMissingTimeSeriesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Meta Data":{"1. Information":"Daily Prices"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"}, []string{"b1"}, newRecordingMetrics())

	_, err := c.DailySeries(context.Background(), "AAPL")
	if !errors.Is(err, models.ErrUpstreamData) {
		t.Fatalf("err = %v, want ErrUpstreamData", err)
	}
}

func TestDailySeriesSendsExpectedQuery(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"function":   r.URL.Query().Get("function"),
			"symbol":     r.URL.Query().Get("symbol"),
			"outputsize": r.URL.Query().Get("outputsize"),
		}
		fmt.Fprint(w, seriesBody(map[string][2]string{
			"2024-03-14": {"100.0", "1000"},
			"2024-03-15": {"101.0", "1100"},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"}, []string{"b1"}, newRecordingMetrics())
	if _, err := c.DailySeries(context.Background(), "MSFT"); err != nil {
		t.Fatalf("DailySeries: %v", err)
	}

	if got["function"] != "TIME_SERIES_DAILY" || got["symbol"] != "MSFT" || got["outputsize"] != "compact" {
		t.Errorf("query = %v", got)
	}
}

func TestSP500PeProxyUsesBenchmarkPoolAndLatestOverSMA(t *testing.T) {
	var key, symbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("apikey")
		symbol = r.URL.Query().Get("symbol")
		fmt.Fprint(w, seriesBody(map[string][2]string{
			"2024-03-13": {"90.0", "1000"},
			"2024-03-14": {"100.0", "1000"},
			"2024-03-15": {"110.0", "1000"},
		}))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"}, []string{"b1"}, newRecordingMetrics())

	ratio, err := c.SP500PeProxy(context.Background())
	if err != nil {
		t.Fatalf("SP500PeProxy: %v", err)
	}
	if key != "b1" {
		t.Errorf("benchmark fetch used key %q, want b1", key)
	}
	if symbol != "SPY" {
		t.Errorf("benchmark symbol = %q, want SPY", symbol)
	}
	// latest 110 over mean 100.
	if math.Abs(ratio-1.1) > 1e-9 {
		t.Errorf("ratio = %v, want 1.1", ratio)
	}
}

func TestNewsSentimentReadsFirstFeedEntry(t *testing.T) {
	var fn, tickers string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn = r.URL.Query().Get("function")
		tickers = r.URL.Query().Get("tickers")
		fmt.Fprint(w, `{"feed":[{"overall_sentiment_score":0.42},{"overall_sentiment_score":-0.9}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"}, []string{"b1"}, newRecordingMetrics())

	score, err := c.NewsSentiment(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("NewsSentiment: %v", err)
	}
	if fn != "NEWS_SENTIMENT" || tickers != "AAPL" {
		t.Errorf("query function=%q tickers=%q", fn, tickers)
	}
	if score != 0.42 {
		t.Errorf("score = %v, want 0.42 (first feed entry)", score)
	}
}

func TestNewsSentimentEmptyFeedIsNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"feed":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, []string{"k1"}, []string{"b1"}, newRecordingMetrics())

	score, err := c.NewsSentiment(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("NewsSentiment: %v", err)
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}
