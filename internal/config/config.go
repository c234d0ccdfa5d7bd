// Package config loads venue configuration from a YAML file, with
// environment variable overrides, the way polymarket-mm's own config
// package does it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the top-level venue configuration.
type Config struct {
	Book      BookConfig      `mapstructure:"book"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BookConfig bounds the matching engine's admission rules.
type BookConfig struct {
	TickSize       string `mapstructure:"tick_size"`
	MaxOrderVolume string `mapstructure:"max_order_volume"`
}

// SimulatorConfig tunes the synthetic order-flow generator. Field names
// mirror sim.Config's own, strings for decimal fields per the codebase's
// json/yaml convention of never unmarshaling money straight into float64.
type SimulatorConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	InitPrice       string        `mapstructure:"init_price"`
	TakeVolume      string        `mapstructure:"take_volume"`
	MakeVolume      string        `mapstructure:"make_volume"`
	BidProb         float64       `mapstructure:"bid_prob"`
	Sleep           time.Duration `mapstructure:"sleep"`
	MarketOrderRate float64       `mapstructure:"market_order_rate"`
	Levels          int           `mapstructure:"levels"`
	NoiseStd        float64       `mapstructure:"noise_std"`
	PriceStd        float64       `mapstructure:"price_std"`
	MaxLadderVolume string        `mapstructure:"max_ladder_volume"`
	SpikeProb       float64       `mapstructure:"spike_prob"`
	SpikeRefreshes  int           `mapstructure:"spike_refreshes"`
}

// HTTPConfig controls the service boundary's listener.
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LoggingConfig controls zerolog's output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default mirrors the values a fresh checkout should run with, with no
// config file present.
func Default() Config {
	return Config{
		Book: BookConfig{
			TickSize:       "0.1",
			MaxOrderVolume: "1000",
		},
		Simulator: SimulatorConfig{
			Enabled:         true,
			InitPrice:       "100.0",
			TakeVolume:      "10.0",
			MakeVolume:      "10.0",
			BidProb:         0.5,
			Sleep:           100 * time.Millisecond,
			MarketOrderRate: 15.0,
			Levels:          15,
			NoiseStd:        10.0,
			PriceStd:        0.10,
			MaxLadderVolume: "1000.0",
			SpikeProb:       0.002,
			SpikeRefreshes:  8,
		},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads config from a YAML file at path, falling back to Default
// when path is empty or does not exist. LADDERBOOK_LOGGING_LEVEL and
// LADDERBOOK_HTTP_ADDR are applied on top either way; other LADDERBOOK_*
// variables override only keys that the YAML file sets.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("LADDERBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if level := os.Getenv("LADDERBOOK_LOGGING_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if addr := os.Getenv("LADDERBOOK_HTTP_ADDR"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	return &cfg, nil
}

// tickSizeOrDefault parses BookConfig.TickSize, returning fallback on a
// malformed or empty string.
func (c BookConfig) tickSizeOrDefault(fallback decimal.Decimal) decimal.Decimal {
	if c.TickSize == "" {
		return fallback
	}
	d, err := decimal.NewFromString(c.TickSize)
	if err != nil {
		return fallback
	}
	return d
}

// TickSizeDecimal returns the configured tick size as a decimal, or 0.1
// when the setting is empty or malformed.
func (c BookConfig) TickSizeDecimal() decimal.Decimal {
	return c.tickSizeOrDefault(decimal.NewFromFloat(0.1))
}

// MaxOrderVolumeDecimal returns the configured per-order volume cap.
func (c BookConfig) MaxOrderVolumeDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.MaxOrderVolume)
	if err != nil {
		return decimal.NewFromInt(1000)
	}
	return d
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if _, err := decimal.NewFromString(c.Book.TickSize); err != nil {
		return fmt.Errorf("book.tick_size must be a decimal string: %w", err)
	}
	if _, err := decimal.NewFromString(c.Book.MaxOrderVolume); err != nil {
		return fmt.Errorf("book.max_order_volume must be a decimal string: %w", err)
	}
	if c.Simulator.Enabled {
		if _, err := decimal.NewFromString(c.Simulator.InitPrice); err != nil {
			return fmt.Errorf("simulator.init_price must be a decimal string: %w", err)
		}
		if c.Simulator.MarketOrderRate <= 0 {
			return fmt.Errorf("simulator.market_order_rate must be > 0")
		}
		if c.Simulator.Levels <= 0 {
			return fmt.Errorf("simulator.levels must be > 0")
		}
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	return nil
}
