package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RATEGRAPH_CONFIG", "")
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, []string{"USD", "EUR"}, c.Rates.Coinbase.Bases)
	assert.Equal(t, 5*time.Second, c.Rates.Coinbase.Timeout)
	assert.Empty(t, c.Rates.File)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
log:
  level: debug
server:
  addr: ":9090"
rates:
  refresh_interval: 30s
  coinbase:
    bases: [GBP]
    cache_refresh: 2m
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 30*time.Second, c.Rates.RefreshInterval)
	assert.Equal(t, []string{"GBP"}, c.Rates.Coinbase.Bases)
	assert.Equal(t, 2*time.Minute, c.Rates.Coinbase.CacheRefresh)
	assert.Equal(t, "https://api.coinbase.com/v2", c.Rates.Coinbase.URL, "unset keys keep defaults")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("RATEGRAPH_CONFIG", "")
	t.Setenv("RATEGRAPH_ADDR", ":7070")
	t.Setenv("RATEGRAPH_LOG_LEVEL", "warn")
	t.Setenv("RATEGRAPH_RATES_FILE", "/tmp/rates.csv")
	t.Setenv("RATEGRAPH_COINBASE_BASES", "USD,JPY")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "/tmp/rates.csv", c.Rates.File)
	assert.Equal(t, []string{"USD", "JPY"}, c.Rates.Coinbase.Bases)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unterminated"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rates:\n  coinbase:\n    bases: []\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err, "no rate source")
}
