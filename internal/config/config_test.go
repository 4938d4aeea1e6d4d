package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.DataSource.Provider)
	assert.Equal(t, "SOL/USDT", cfg.Pair())
	assert.Equal(t, "1d", cfg.DataSource.Timeframe)
	assert.Equal(t, "2010-01-01T00:00:00Z", cfg.DataSource.Since)
	assert.Equal(t, 3, cfg.DataSource.RetryCount)
	assert.Equal(t, "data_sol.json", cfg.OutputPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, `
data_source:
  provider: yahoo
  symbol: BTC
  fiat: USD
  page_limit: 250
output:
  dir: out
schedule:
  refresh_cron: "0 0 1 * * *"
`)
	t.Setenv("PRICE_SYMBOL", "ETH")
	t.Setenv("PRICE_PAGE_LIMIT", "1000")
	t.Setenv("SQLITE_PATH", "runs.db")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "ETH/USD", cfg.Pair())
	assert.Equal(t, 1000, cfg.DataSource.PageLimit)
	assert.Equal(t, "0 0 1 * * *", cfg.Schedule.RefreshCron)
	assert.Equal(t, "runs.db", cfg.Database.SQLitePath)
	assert.Equal(t, filepath.Join("out", "data_eth.json"), cfg.OutputPath())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRICE_FIAT=BTC\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PRICE_FIAT") })

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "SOL/BTC", cfg.Pair())
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(writeConfig(t, "data_source: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.DataSource.Provider = "ftx"
	assert.Error(t, cfg.Validate())

	cfg.DataSource.Provider = "mock"
	cfg.Telegram.BotToken = "token"
	assert.Error(t, cfg.Validate())

	cfg.Telegram.ChatID = "42"
	assert.NoError(t, cfg.Validate())
}

func TestOutputPath_Explicit(t *testing.T) {
	cfg := &Config{}
	cfg.Output.Path = "/tmp/x.json"
	cfg.DataSource.Symbol = "SOL"
	assert.Equal(t, "/tmp/x.json", cfg.OutputPath())
}
