package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	AlphaVantage struct {
		BaseURL string `yaml:"base_url" default:"https://www.alphavantage.co"`
		// Keys is the primary pool, used for per-ticker daily series.
		Keys []string `yaml:"keys"`
		// BenchmarkKeys is the secondary pool, used for the benchmark proxy
		// and news sentiment so a hot ticker cannot starve the benchmark.
		BenchmarkKeys   []string `yaml:"benchmark_keys"`
		BenchmarkTicker string   `yaml:"benchmark_ticker" default:"SPY"`
	} `yaml:"alphavantage"`
	Finnhub struct {
		BaseURL string `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"finnhub"`
	Fmp struct {
		BaseURL string `yaml:"base_url" default:"https://financialmodelingprep.com/stable"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"fmp"`
	Currency struct {
		BaseURL string `yaml:"base_url" default:"https://api.exchangerate.host"`
	} `yaml:"currency"`
	Sentiment struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"sentiment"`
	Fetch struct {
		// Timeout bounds each individual upstream fetch; cancellation is
		// propagated into the orchestrator join.
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		RequestsPerSec int           `yaml:"requests_per_sec" default:"5"`
		// RetryBackoff selects the delay policy between rotated attempts:
		// "none" preserves the baseline zero-backoff contract.
		RetryBackoff string `yaml:"retry_backoff" default:"none"`
	} `yaml:"fetch"`
	Predictor struct {
		BaseURL     string        `yaml:"base_url" default:"http://localhost:5000"`
		Timeout     time.Duration `yaml:"timeout" default:"10s"`
		HorizonDays int           `yaml:"horizon_days" default:"30"`
		MaxAttempts int           `yaml:"max_attempts" default:"3"`
	} `yaml:"predictor"`
	Scoring      ScoringConfig      `yaml:"scoring"`
	Significance SignificanceConfig `yaml:"significance"`
	Cache        struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL struct {
			Fundamentals time.Duration `yaml:"fundamentals" default:"15m"`
			Benchmark    time.Duration `yaml:"benchmark" default:"1h"`
			Sentiment    time.Duration `yaml:"sentiment" default:"30m"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"tradescope"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic" default:"tradescope.alerts"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
	} `yaml:"kafka"`
	Evaluator struct {
		Enabled bool `yaml:"enabled"`
		// Schedule is a standard 5-field cron spec; default is 06:30 local,
		// an hour after the upstream publishes the prior close.
		Schedule  string   `yaml:"schedule" default:"30 6 * * *"`
		Watchlist []string `yaml:"watchlist"`
		Duration  int      `yaml:"duration" default:"3"`
		Unit      string   `yaml:"unit" default:"month"`
	} `yaml:"evaluator"`
}

// ScoringConfig holds the heuristic scoring policy. The weights and
// thresholds are hand-tuned constants inherited from the original model
// calibration; they are configuration, not derivations.
type ScoringConfig struct {
	// Mode selects the scoring path: "heuristic" or "remote".
	Mode string `yaml:"mode" default:"heuristic"`

	RsiMomentumFactor  float64 `yaml:"rsi_momentum_factor" default:"1.5"`
	RsiOversoldBonus   float64 `yaml:"rsi_oversold_bonus" default:"15"`
	RsiOversoldMax     float64 `yaml:"rsi_oversold_max" default:"30"`
	RsiOverboughtMin   float64 `yaml:"rsi_overbought_min" default:"70"`
	MacdDeltaFactor    float64 `yaml:"macd_delta_factor" default:"100"`
	MacdCap            float64 `yaml:"macd_cap" default:"25"`
	BbBreakoutPenalty  float64 `yaml:"bb_breakout_penalty" default:"20"`
	BbBounceBonus      float64 `yaml:"bb_bounce_bonus" default:"20"`
	SmaAboveBonus      float64 `yaml:"sma_above_bonus" default:"5"`
	VolumeThreshold    float64 `yaml:"volume_threshold" default:"100000000"`
	VolumeBonus        float64 `yaml:"volume_bonus" default:"5"`
	AtrHighThreshold   float64 `yaml:"atr_high_threshold" default:"2.0"`
	AtrHighBonus       float64 `yaml:"atr_high_bonus" default:"10"`
	AtrModThreshold    float64 `yaml:"atr_moderate_threshold" default:"1.0"`
	AtrModBonus        float64 `yaml:"atr_moderate_bonus" default:"5"`
	VolatilityMin      float64 `yaml:"volatility_min" default:"0.1"`
	VolatilityBonus    float64 `yaml:"volatility_bonus" default:"5"`
	SentimentStrong    float64 `yaml:"sentiment_strong" default:"0.35"`
	SentimentWeak      float64 `yaml:"sentiment_weak" default:"0.15"`
	SentimentStrongPts float64 `yaml:"sentiment_strong_points" default:"10"`
	SentimentWeakPts   float64 `yaml:"sentiment_weak_points" default:"5"`

	// Raw totals land in roughly [NormalizeMin, NormalizeMin+NormalizeRange];
	// normalization maps that onto [0,100].
	NormalizeMin   float64 `yaml:"normalize_min" default:"-35"`
	NormalizeRange float64 `yaml:"normalize_range" default:"145"`

	StrongBuyMin int `yaml:"strong_buy_min" default:"80"`
	BuyMin       int `yaml:"buy_min" default:"60"`
	NeutralMin   int `yaml:"neutral_min" default:"40"`
	SellMin      int `yaml:"sell_min" default:"20"`
}

// SignificanceConfig holds the deviation-test thresholds.
type SignificanceConfig struct {
	PercentThreshold float64 `yaml:"percent_threshold" default:"5.0"`
	ZScoreThreshold  float64 `yaml:"zscore_threshold" default:"1.5"`
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and endpoints
// with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALPHAVANTAGE_KEYS"); v != "" {
		c.AlphaVantage.Keys = strings.Split(v, ",")
	}
	if v := os.Getenv("ALPHAVANTAGE_BENCHMARK_KEYS"); v != "" {
		c.AlphaVantage.BenchmarkKeys = strings.Split(v, ",")
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.Fmp.APIKey = v
	}
	if v := os.Getenv("PREDICTOR_URL"); v != "" {
		c.Predictor.BaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Evaluator.Watchlist = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks that required fields are present and modes are known.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.AlphaVantage.Keys) == 0 {
		return fmt.Errorf("alphavantage.keys cannot be empty")
	}
	if len(c.AlphaVantage.BenchmarkKeys) == 0 {
		return fmt.Errorf("alphavantage.benchmark_keys cannot be empty")
	}
	if c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required")
	}
	if c.Fmp.APIKey == "" {
		return fmt.Errorf("fmp.api_key is required")
	}
	if c.Scoring.Mode != "heuristic" && c.Scoring.Mode != "remote" {
		return fmt.Errorf("scoring.mode must be 'heuristic' or 'remote', got '%s'", c.Scoring.Mode)
	}
	if c.Fetch.RetryBackoff != "none" && c.Fetch.RetryBackoff != "exponential" {
		return fmt.Errorf("fetch.retry_backoff must be 'none' or 'exponential', got '%s'", c.Fetch.RetryBackoff)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Evaluator.Enabled && len(c.Evaluator.Watchlist) == 0 {
		return fmt.Errorf("evaluator.watchlist cannot be empty when the evaluator is enabled")
	}
	return nil
}
