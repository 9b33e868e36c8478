package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSymbols is the monitored universe used when the config file
// does not list one.
var DefaultSymbols = []string{
	"ETH", "BNB", "SOL", "XRP", "ADA", "AVAX", "DOT", "MATIC",
	"LINK", "UNI", "ATOM", "LTC", "FIL", "APT", "ARB",
}

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Exchange struct {
		QuoteAsset string `yaml:"quote_asset"`
		APIKey     string `yaml:"api_key"`
		APISecret  string `yaml:"api_secret"`
	} `yaml:"exchange"`
	Universe struct {
		Benchmark string   `yaml:"benchmark"`
		Symbols   []string `yaml:"symbols"`
	} `yaml:"universe"`
	Analysis struct {
		Timeframe           string         `yaml:"timeframe"`
		SeriesLimit         int            `yaml:"series_limit"`
		Horizons            map[string]int `yaml:"horizons"`
		RSIPeriod           int            `yaml:"rsi_period"`
		ATRPeriod           int            `yaml:"atr_period"`
		MinLiquidityUSD     float64        `yaml:"min_liquidity_usd"`
		VolatilityThreshold float64        `yaml:"volatility_threshold"`
		MaxSpreadPercent    float64        `yaml:"max_spread_percent"`
		Weights             struct {
			Performance float64 `yaml:"performance"`
			Momentum    float64 `yaml:"momentum"`
			Volatility  float64 `yaml:"volatility"`
			Liquidity   float64 `yaml:"liquidity"`
			VolumeTrend float64 `yaml:"volume_trend"`
		} `yaml:"weights"`
		TopPairs int `yaml:"top_pairs"`
	} `yaml:"analysis"`
	Scheduler struct {
		IntervalMinutes     int `yaml:"interval_minutes"`
		Workers             int `yaml:"workers"`
		FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
		SummaryHour         int `yaml:"summary_hour"`
		MaintenanceHour     int `yaml:"maintenance_hour"`
	} `yaml:"scheduler"`
	Cache struct {
		Backend            string `yaml:"backend"`
		SeriesTTLSeconds   int    `yaml:"series_ttl_seconds"`
		SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
		Redis              struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Store struct {
		Backend       string `yaml:"backend"`
		SQLitePath    string `yaml:"sqlite_path"`
		RetentionDays int    `yaml:"retention_days"`
		Postgres      struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"store"`
	Notifier struct {
		NtfyTopic  string `yaml:"ntfy_topic"`
		NtfyServer string `yaml:"ntfy_server"`
	} `yaml:"notifier"`
	Metrics struct {
		Enabled    bool   `yaml:"enabled"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error;
// the defaults describe a runnable log-only setup.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Set before parsing so an explicit `enabled: false` survives.
	cfg.Metrics.Enabled = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.Exchange.APIKey = v
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		cfg.Exchange.APISecret = v
	}
	if v := os.Getenv("NTFY_TOPIC"); v != "" {
		cfg.Notifier.NtfyTopic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Store.Postgres.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Exchange.QuoteAsset == "" {
		cfg.Exchange.QuoteAsset = "USDT"
	}
	if cfg.Universe.Benchmark == "" {
		cfg.Universe.Benchmark = "BTC"
	}
	if len(cfg.Universe.Symbols) == 0 {
		cfg.Universe.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if cfg.Analysis.Timeframe == "" {
		cfg.Analysis.Timeframe = "1h"
	}
	if cfg.Analysis.SeriesLimit == 0 {
		cfg.Analysis.SeriesLimit = 200
	}
	if len(cfg.Analysis.Horizons) == 0 {
		cfg.Analysis.Horizons = map[string]int{"1h": 1, "4h": 4, "1d": 24, "1w": 168}
	}
	if cfg.Analysis.RSIPeriod == 0 {
		cfg.Analysis.RSIPeriod = 14
	}
	if cfg.Analysis.ATRPeriod == 0 {
		cfg.Analysis.ATRPeriod = 14
	}
	if cfg.Analysis.MinLiquidityUSD == 0 {
		cfg.Analysis.MinLiquidityUSD = 10000000
	}
	if cfg.Analysis.VolatilityThreshold == 0 {
		cfg.Analysis.VolatilityThreshold = 5.0
	}
	if cfg.Analysis.MaxSpreadPercent == 0 {
		cfg.Analysis.MaxSpreadPercent = 0.1
	}
	w := &cfg.Analysis.Weights
	if w.Performance == 0 && w.Momentum == 0 && w.Volatility == 0 && w.Liquidity == 0 && w.VolumeTrend == 0 {
		w.Performance = 0.35
		w.Momentum = 0.25
		w.Volatility = 0.20
		w.Liquidity = 0.10
		w.VolumeTrend = 0.10
	}
	if cfg.Analysis.TopPairs == 0 {
		cfg.Analysis.TopPairs = 5
	}
	if cfg.Scheduler.IntervalMinutes == 0 {
		cfg.Scheduler.IntervalMinutes = 15
	}
	if cfg.Scheduler.Workers == 0 {
		cfg.Scheduler.Workers = 4
	}
	if cfg.Scheduler.FetchTimeoutSeconds == 0 {
		cfg.Scheduler.FetchTimeoutSeconds = 30
	}
	if cfg.Scheduler.SummaryHour == 0 {
		cfg.Scheduler.SummaryHour = 8
	}
	if cfg.Scheduler.MaintenanceHour == 0 {
		cfg.Scheduler.MaintenanceHour = 3
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.SeriesTTLSeconds == 0 {
		cfg.Cache.SeriesTTLSeconds = 300
	}
	if cfg.Cache.SnapshotTTLSeconds == 0 {
		cfg.Cache.SnapshotTTLSeconds = 30
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = "pairsentinel.db"
	}
	if cfg.Store.RetentionDays == 0 {
		cfg.Store.RetentionDays = 30
	}
	if cfg.Store.Postgres.Host == "" {
		cfg.Store.Postgres.Host = "localhost"
	}
	if cfg.Store.Postgres.Port == 0 {
		cfg.Store.Postgres.Port = 5432
	}
	if cfg.Store.Postgres.User == "" {
		cfg.Store.Postgres.User = "postgres"
	}
	if cfg.Store.Postgres.DBName == "" {
		cfg.Store.Postgres.DBName = "pairsentinel"
	}
	if cfg.Store.Postgres.SSLMode == "" {
		cfg.Store.Postgres.SSLMode = "disable"
	}
	if cfg.Notifier.NtfyServer == "" {
		cfg.Notifier.NtfyServer = "https://ntfy.sh"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Universe.Benchmark == "" {
		return fmt.Errorf("universe.benchmark is required")
	}
	if len(c.Universe.Symbols) == 0 {
		return fmt.Errorf("universe.symbols must list at least one symbol")
	}
	seen := make(map[string]bool, len(c.Universe.Symbols))
	for _, symbol := range c.Universe.Symbols {
		if symbol == "" {
			return fmt.Errorf("universe.symbols contains an empty symbol")
		}
		if seen[symbol] {
			return fmt.Errorf("universe.symbols lists %s twice", symbol)
		}
		seen[symbol] = true
	}

	w := c.Analysis.Weights
	sum := w.Performance + w.Momentum + w.Volatility + w.Liquidity + w.VolumeTrend
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("analysis.weights must sum to 1.0, got %v", sum)
	}
	if c.Analysis.SeriesLimit <= 0 {
		return fmt.Errorf("analysis.series_limit must be positive")
	}
	if c.Analysis.RSIPeriod <= 0 || c.Analysis.ATRPeriod <= 0 {
		return fmt.Errorf("analysis indicator periods must be positive")
	}
	if len(c.Analysis.Horizons) == 0 {
		return fmt.Errorf("analysis.horizons must not be empty")
	}
	for label, offset := range c.Analysis.Horizons {
		if offset <= 0 {
			return fmt.Errorf("analysis.horizons[%s] must be positive", label)
		}
	}
	if c.Analysis.TopPairs <= 0 {
		return fmt.Errorf("analysis.top_pairs must be positive")
	}

	if c.Scheduler.IntervalMinutes <= 0 || c.Scheduler.IntervalMinutes > 59 {
		return fmt.Errorf("scheduler.interval_minutes must be between 1 and 59")
	}
	if c.Scheduler.Workers <= 0 {
		return fmt.Errorf("scheduler.workers must be positive")
	}
	if c.Scheduler.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("scheduler.fetch_timeout_seconds must be positive")
	}
	if c.Scheduler.SummaryHour < 0 || c.Scheduler.SummaryHour > 23 {
		return fmt.Errorf("scheduler.summary_hour must be between 0 and 23")
	}
	if c.Scheduler.MaintenanceHour < 0 || c.Scheduler.MaintenanceHour > 23 {
		return fmt.Errorf("scheduler.maintenance_hour must be between 0 and 23")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.SeriesTTLSeconds <= 0 || c.Cache.SnapshotTTLSeconds <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	switch c.Store.Backend {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("store.backend must be sqlite, postgres or none, got %q", c.Store.Backend)
	}
	if c.Store.RetentionDays <= 0 {
		return fmt.Errorf("store.retention_days must be positive")
	}

	return nil
}

// SeriesTTL returns the candle cache TTL as a duration.
func (c *Config) SeriesTTL() time.Duration {
	return time.Duration(c.Cache.SeriesTTLSeconds) * time.Second
}

// SnapshotTTL returns the ticker cache TTL as a duration.
func (c *Config) SnapshotTTL() time.Duration {
	return time.Duration(c.Cache.SnapshotTTLSeconds) * time.Second
}

// FetchTimeout returns the per-call provider timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Scheduler.FetchTimeoutSeconds) * time.Second
}

// Retention returns the store retention window as a duration.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Store.RetentionDays) * 24 * time.Hour
}
