package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal     *prometheus.CounterVec
	keyRotations     *prometheus.CounterVec
	analysisDuration prometheus.Histogram
	lastScore        *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradescope_fetches_total",
				Help: "Total number of upstream fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		keyRotations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradescope_key_rotations_total",
				Help: "Total number of API key rotations by pool",
			},
			[]string{"pool"},
		),
		analysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradescope_analysis_duration_seconds",
				Help:    "Duration of full analysis requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradescope_last_score",
				Help: "Last computed signal score for a ticker",
			},
			[]string{"ticker"},
		),
	}
}

// RecordFetch records one upstream fetch attempt outcome.
func (r *Recorder) RecordFetch(source, outcome string) {
	r.fetchesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordKeyRotation records a rotation within a key pool.
func (r *Recorder) RecordKeyRotation(pool string) {
	r.keyRotations.WithLabelValues(pool).Inc()
}

// RecordAnalysisDuration records end-to-end analysis latency in seconds.
func (r *Recorder) RecordAnalysisDuration(seconds float64) {
	r.analysisDuration.Observe(seconds)
}

// RecordScore records the latest score for a ticker.
func (r *Recorder) RecordScore(ticker string, score float64) {
	r.lastScore.WithLabelValues(ticker).Set(score)
}
