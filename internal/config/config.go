package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"PortfolioTracker/internal/valuation"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Provider names for price_source.provider.
const (
	ProviderLive = "live"
	ProviderMock = "mock"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Portfolio struct {
		File string `yaml:"file"`
	} `yaml:"portfolio"`
	PriceSource struct {
		Provider       string   `yaml:"provider"`
		Proxy          string   `yaml:"proxy"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		CryptoSuffixes []string `yaml:"crypto_suffixes"`
		YahooBaseURL   string   `yaml:"yahoo_base_url"`
		CoinbaseURL    string   `yaml:"coinbase_base_url"`
		MockBasePrice  float64  `yaml:"mock_base_price"`
	} `yaml:"price_source"`
	Analysis struct {
		HistoryWindowDays    int  `yaml:"history_window_days"`
		MaxConcurrentFetches int  `yaml:"max_concurrent_fetches"`
		StrictValuation      bool `yaml:"strict_valuation"`
	} `yaml:"analysis"`
	Valuation struct {
		IndustryBenchmarks map[string]valuation.Benchmark `yaml:"industry_benchmarks"`
	} `yaml:"valuation"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

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
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PORTFOLIO_FILE"); v != "" {
		cfg.Portfolio.File = v
	}
	if v := os.Getenv("PRICE_PROVIDER"); v != "" {
		cfg.PriceSource.Provider = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.PriceSource.Proxy = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.PriceSource.YahooBaseURL = v
	}
	if v := os.Getenv("COINBASE_BASE_URL"); v != "" {
		cfg.PriceSource.CoinbaseURL = v
	}
	if v := os.Getenv("MAX_CONCURRENT_FETCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.MaxConcurrentFetches = n
		}
	}
	if v := os.Getenv("STRICT_VALUATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analysis.StrictValuation = b
		}
	}
	if v := os.Getenv("CRON_ANALYSIS"); v != "" {
		cfg.Schedule.AnalysisCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Portfolio.File == "" {
		c.Portfolio.File = "data/portfolio.json"
	}
	if c.PriceSource.Provider == "" {
		c.PriceSource.Provider = ProviderLive
	}
	c.PriceSource.Provider = strings.ToLower(c.PriceSource.Provider)
	if c.PriceSource.TimeoutSeconds == 0 {
		c.PriceSource.TimeoutSeconds = 30
	}
	if len(c.PriceSource.CryptoSuffixes) == 0 {
		c.PriceSource.CryptoSuffixes = []string{"-USD"}
	}
	if c.PriceSource.MockBasePrice == 0 {
		c.PriceSource.MockBasePrice = 100
	}
	if c.Analysis.HistoryWindowDays == 0 {
		c.Analysis.HistoryWindowDays = 30
	}
	if c.Analysis.MaxConcurrentFetches == 0 {
		c.Analysis.MaxConcurrentFetches = 4
	}
	if c.Schedule.AnalysisCron == "" {
		c.Schedule.AnalysisCron = "0 */15 * * * *"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	// Benchmark keys are matched against normalized tickers.
	if len(c.Valuation.IndustryBenchmarks) > 0 {
		normalized := make(map[string]valuation.Benchmark, len(c.Valuation.IndustryBenchmarks))
		for k, v := range c.Valuation.IndustryBenchmarks {
			normalized[strings.ToUpper(strings.TrimSpace(k))] = v
		}
		c.Valuation.IndustryBenchmarks = normalized
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.PriceSource.Provider {
	case ProviderLive, ProviderMock:
	default:
		return fmt.Errorf("price_source.provider must be %q or %q, got %q", ProviderLive, ProviderMock, c.PriceSource.Provider)
	}
	if c.PriceSource.TimeoutSeconds < 0 {
		return fmt.Errorf("price_source.timeout_seconds must not be negative")
	}
	if c.Analysis.HistoryWindowDays < 0 {
		return fmt.Errorf("analysis.history_window_days must be positive")
	}
	if c.Analysis.MaxConcurrentFetches < 0 {
		return fmt.Errorf("analysis.max_concurrent_fetches must be positive")
	}
	for ticker, b := range c.Valuation.IndustryBenchmarks {
		if b.PE < 0 || b.PB < 0 {
			return fmt.Errorf("valuation.industry_benchmarks.%s: ratios must not be negative", ticker)
		}
	}
	if c.Portfolio.File == "" {
		return fmt.Errorf("portfolio.file is required")
	}
	return nil
}
