package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "BINANCE_BASE_URL", "HTTPS_PROXY",
		"SCAN_CRON", "LOG_LEVEL", "TELEGRAM_BASE_URL", "METRICS_ADDR", "RUN_ON_START",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://fapi.binance.com", cfg.Exchange.BaseURL)
	assert.Equal(t, "USDT", cfg.Exchange.QuoteAsset)
	assert.Equal(t, "4h", cfg.Scan.Interval)
	assert.Equal(t, 50, cfg.Scan.Limit)
	assert.Equal(t, 10, cfg.Scan.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Scan.Timeout)
	assert.Equal(t, "0 1 */4 * * *", cfg.Scan.Cron)
	assert.Equal(t, 30, cfg.Strategy.MinRows)
	assert.InDelta(t, 0.05, cfg.Strategy.BreakoutReturn, 1e-12)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Scan.RunOnStart)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.BaseURL)
	assert.Equal(t, 3, cfg.Telegram.Retries)
	assert.InDelta(t, 10.0, cfg.Exchange.RequestsPerSecond, 1e-12)

	loc, err := cfg.Location()
	require.NoError(t, err)
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
telegram:
  bot_token: file-token
  chat_id: "100"
scan:
  interval: 1h
  workers: 4
  timezone: UTC
strategy:
  breakout_return: 0.03
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Telegram.ChatID)
	assert.Equal(t, "1h", cfg.Scan.Interval)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 50, cfg.Scan.Limit)
	assert.InDelta(t, 0.03, cfg.Strategy.BreakoutReturn, 1e-12)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Scan.RunOnStart)
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestLoadExplicitZeroesSurviveDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
telegram:
  retries: 0
exchange:
  requests_per_second: 0
scan:
  timeout: 0s
  timezone: ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Telegram.Retries)
	assert.Equal(t, 0.0, cfg.Exchange.RequestsPerSecond)
	assert.Equal(t, time.Duration(0), cfg.Scan.Timeout)
	assert.Equal(t, "", cfg.Scan.Timezone)
	assert.Equal(t, 50, cfg.Scan.Limit)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC+9", loc.String())
}

func TestLoadTelegramBaseURLFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BASE_URL", "http://127.0.0.1:8081")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8081", cfg.Telegram.BaseURL)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "scan: [unclosed"))
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"interval": "scan:\n  interval: 7h\n",
		"min rows": "strategy:\n  min_rows: 10\n",
		"limit":    "scan:\n  limit: 20\n",
		"timezone": "scan:\n  timezone: Mars/Olympus\n",
		"format":   "log:\n  format: xml\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateTelegram(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateTelegram())

	cfg.Telegram.BotToken = "x"
	assert.Error(t, cfg.ValidateTelegram())
	cfg.Telegram.ChatID = "1"
	assert.NoError(t, cfg.ValidateTelegram())
}
