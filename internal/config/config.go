package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		BaseURL  string `yaml:"base_url" default:"https://api.telegram.org" validate:"url"`
		Retries  int    `yaml:"retries" default:"3" validate:"gte=0,lte=10"`
	} `yaml:"telegram"`
	Exchange struct {
		BaseURL           string  `yaml:"base_url" default:"https://fapi.binance.com" validate:"url"`
		QuoteAsset        string  `yaml:"quote_asset" default:"USDT"`
		RequestsPerSecond float64 `yaml:"requests_per_second" default:"10" validate:"gte=0"`
		Burst             int     `yaml:"burst" default:"5" validate:"gte=1"`
	} `yaml:"exchange"`
	Scan struct {
		Interval   string        `yaml:"interval" default:"4h" validate:"oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
		Limit      int           `yaml:"limit" default:"50" validate:"gte=30,lte=1500"`
		Workers    int           `yaml:"workers" default:"10" validate:"gte=1,lte=100"`
		Timeout    time.Duration `yaml:"timeout" default:"10m" validate:"gte=0"`
		Cron       string        `yaml:"cron" default:"0 1 */4 * * *" validate:"required"`
		Timezone   string        `yaml:"timezone" default:"Asia/Seoul"`
		RunOnStart bool          `yaml:"run_on_start"`
	} `yaml:"scan"`
	Strategy struct {
		MinRows        int     `yaml:"min_rows" default:"30" validate:"gte=21"`
		BreakoutReturn float64 `yaml:"breakout_return" default:"0.05" validate:"gt=0,lt=1"`
	} `yaml:"strategy"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load applies defaults, then the YAML file, then environment variable
// overrides. Keys present in the file win over defaults even when zero, so
// scan.timeout: 0 and exchange.requests_per_second: 0 mean unbounded. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TELEGRAM_BASE_URL"); v != "" {
		cfg.Telegram.BaseURL = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if os.Getenv("RUN_ON_START") == "true" {
		cfg.Scan.RunOnStart = true
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateTelegram checks that credentials for sending are present.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Location resolves the reporting timezone. An explicitly empty name means
// a fixed UTC+9 zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Scan.Timezone == "" {
		return time.FixedZone("UTC+9", 9*60*60), nil
	}
	loc, err := time.LoadLocation(c.Scan.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scan.timezone: %w", err)
	}
	return loc, nil
}
