// Package infra holds process-level plumbing: configuration loading and
// structured logging.
package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const AppName = "tradesim"

// Config holds every runtime setting. LoadConfig reads the YAML file and
// then applies environment overrides on top.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Workers        int      `yaml:"workers"`
		BufferCapacity int      `yaml:"buffer_capacity"`
		Symbols        []string `yaml:"symbols"`
		// EmissionPolicy is "detection" (repeat while the condition holds)
		// or "transition" (report only classification changes).
		EmissionPolicy string `yaml:"emission_policy"`
	} `yaml:"market"`

	Indicators struct {
		RSIWindow  int     `yaml:"rsi_window"`
		BBWindow   int     `yaml:"bb_window"`
		BBK        float64 `yaml:"bb_k"`
		EMAWindow  int     `yaml:"ema_window"`
		MACDFast   int     `yaml:"macd_fast"`
		MACDSlow   int     `yaml:"macd_slow"`
		MACDSignal int     `yaml:"macd_signal"`
	} `yaml:"indicators"`

	Signals struct {
		RSIOversold   float64 `yaml:"rsi_oversold"`
		RSIOverbought float64 `yaml:"rsi_overbought"`
		UseMACD       bool    `yaml:"use_macd"`
		UseEMATrend   bool    `yaml:"use_ema_trend"`
	} `yaml:"signals"`

	Backtest struct {
		CommissionBps int64 `yaml:"commission_bps"`
	} `yaml:"backtest"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a runnable configuration with conventional
// indicator windows.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = AppName
	cfg.App.Version = "dev"
	cfg.Market.Workers = 4
	cfg.Market.BufferCapacity = 200
	cfg.Market.Symbols = []string{"BTC/USDT", "ETH/USDT"}
	cfg.Market.EmissionPolicy = "detection"
	cfg.Indicators.RSIWindow = 14
	cfg.Indicators.BBWindow = 20
	cfg.Indicators.BBK = 2.0
	cfg.Indicators.EMAWindow = 20
	cfg.Indicators.MACDFast = 12
	cfg.Indicators.MACDSlow = 26
	cfg.Indicators.MACDSignal = 9
	cfg.Signals.RSIOversold = 30.0
	cfg.Signals.RSIOverbought = 70.0
	cfg.Backtest.CommissionBps = 5
	cfg.Metrics.Addr = ":9091"
	cfg.Logging.Level = "info"
	return &cfg
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Market.Workers < 1 {
		return fmt.Errorf("market.workers must be at least 1, got %d", c.Market.Workers)
	}
	if c.Market.BufferCapacity < 2 {
		return fmt.Errorf("market.buffer_capacity must be at least 2, got %d", c.Market.BufferCapacity)
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("at least one market symbol is required")
	}
	switch c.Market.EmissionPolicy {
	case "detection", "transition":
	default:
		return fmt.Errorf("unknown emission policy: %q", c.Market.EmissionPolicy)
	}
	if c.Indicators.RSIWindow < 1 || c.Indicators.BBWindow < 1 {
		return fmt.Errorf("indicator windows must be positive")
	}
	if c.Indicators.BBK <= 0 {
		return fmt.Errorf("bb_k must be positive, got %v", c.Indicators.BBK)
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", c.Indicators.MACDFast, c.Indicators.MACDSlow)
	}
	if c.Signals.RSIOversold >= c.Signals.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%v) must be below rsi_overbought (%v)", c.Signals.RSIOversold, c.Signals.RSIOverbought)
	}
	if c.Backtest.CommissionBps < 0 {
		return fmt.Errorf("commission_bps must not be negative, got %d", c.Backtest.CommissionBps)
	}
	return nil
}

// overrideWithEnv applies environment variables over file values, so
// deployments can retune without editing the config.
func overrideWithEnv(cfg *Config) {
	if lvl := os.Getenv("TRADESIM_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if addr := os.Getenv("TRADESIM_METRICS_ADDR"); addr != "" {
		cfg.Metrics.Addr = addr
		cfg.Metrics.Enabled = true
	}
	if policy := os.Getenv("TRADESIM_EMISSION_POLICY"); policy != "" {
		cfg.Market.EmissionPolicy = policy
	}
}

// ResolveConfigPath locates config.yaml: the working directory first, the
// OS config directory second. LoadConfig reports the miss if neither holds
// the file.
func ResolveConfigPath() string {
	defaultPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}

	configRoot, err := os.UserConfigDir()
	if err == nil {
		osPath := filepath.Join(configRoot, AppName, "config.yaml")
		if _, err := os.Stat(osPath); err == nil {
			return osPath
		}
	}
	return defaultPath
}
