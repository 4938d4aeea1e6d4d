package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider   string `yaml:"provider"`
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		Symbol     string `yaml:"symbol"`
		Fiat       string `yaml:"fiat"`
		Timeframe  string `yaml:"timeframe"`
		Since      string `yaml:"since"`
		PageLimit  int    `yaml:"page_limit"`
		RetryCount int    `yaml:"retry_count"`
	} `yaml:"data_source"`
	Output struct {
		Dir  string `yaml:"dir"`
		Path string `yaml:"path"`
	} `yaml:"output"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML config at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"PRICE_PROVIDER", &c.DataSource.Provider},
		{"PRICE_SYMBOL", &c.DataSource.Symbol},
		{"PRICE_FIAT", &c.DataSource.Fiat},
		{"PRICE_TIMEFRAME", &c.DataSource.Timeframe},
		{"PRICE_SINCE", &c.DataSource.Since},
		{"BINANCE_BASE_URL", &c.DataSource.BaseURL},
		{"BINANCE_API_KEY", &c.DataSource.APIKey},
		{"OUTPUT_PATH", &c.Output.Path},
		{"CRON_REFRESH", &c.Schedule.RefreshCron},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"LOG_LEVEL", &c.Log.Level},
		{"HTTPS_PROXY", &c.Proxy},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
	if v := os.Getenv("PRICE_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DataSource.PageLimit = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "binance"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "SOL"
	}
	if c.DataSource.Fiat == "" {
		c.DataSource.Fiat = "USDT"
	}
	if c.DataSource.Timeframe == "" {
		c.DataSource.Timeframe = "1d"
	}
	if c.DataSource.Since == "" {
		c.DataSource.Since = "2010-01-01T00:00:00Z"
	}
	if c.DataSource.RetryCount == 0 {
		c.DataSource.RetryCount = 3
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Pair returns the provider pair, e.g. "SOL/USDT". An empty fiat yields
// the bare symbol, for providers such as Yahoo indices.
func (c *Config) Pair() string {
	if c.DataSource.Fiat == "" || c.DataSource.Fiat == "-" {
		return c.DataSource.Symbol
	}
	return c.DataSource.Symbol + "/" + c.DataSource.Fiat
}

// OutputPath returns the configured output path, or data_<symbol>.json
// inside Output.Dir.
func (c *Config) OutputPath() string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	name := "data_" + strings.ToLower(c.DataSource.Symbol) + ".json"
	return filepath.Join(c.Output.Dir, name)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "binance", "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider must be one of binance, yahoo, mock; got %q", c.DataSource.Provider)
	}
	if c.DataSource.Symbol == "" {
		return fmt.Errorf("data_source.symbol is required")
	}
	if c.DataSource.PageLimit < 0 {
		return fmt.Errorf("data_source.page_limit must not be negative")
	}
	if c.DataSource.RetryCount < 0 {
		return fmt.Errorf("data_source.retry_count must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
