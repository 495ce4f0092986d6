package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrinter_Defaults(t *testing.T) {
	t.Setenv("FACTORY_TOKEN", "secret")

	cfg, err := LoadPrinter("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, 5*time.Second, cfg.ErrorBackoff)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.LookbackDays)
	assert.Equal(t, "stdout", cfg.PrintSink)
	assert.Equal(t, "memory", cfg.Dedup)
	assert.Equal(t, 50, cfg.TicketWidth)
	assert.Equal(t, "secret", cfg.AuthMode)
	assert.False(t, cfg.UncategorizedDefault)
}

func TestLoadPrinter_EnvOverrides(t *testing.T) {
	t.Setenv("FACTORY_TOKEN", "secret")
	t.Setenv("FACTORY_API_URL", "https://orders.example.com/")
	t.Setenv("FACTORY_CHECK_INTERVAL", "10")
	t.Setenv("FACTORY_LOOKBACK_DAYS", "7")
	t.Setenv("FACTORY_PRINTER", "lp:POS")
	t.Setenv("FACTORY_DEDUP", "sqlite:/var/lib/factory/ledger.db")
	t.Setenv("FACTORY_TICKET_WIDTH", "60")
	t.Setenv("FACTORY_AUTH_MODE", "JWT")

	cfg, err := LoadPrinter("")
	require.NoError(t, err)

	assert.Equal(t, "https://orders.example.com", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.CheckInterval)
	assert.Equal(t, 7, cfg.LookbackDays)
	assert.Equal(t, "lp:POS", cfg.PrintSink)
	assert.Equal(t, "sqlite:/var/lib/factory/ledger.db", cfg.Dedup)
	assert.Equal(t, 60, cfg.TicketWidth)
	assert.Equal(t, "jwt", cfg.AuthMode)
}

func TestLoadPrinter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.yaml")
	require.NoError(t, os.WriteFile(path, []byte("factory_token: from-file\nfactory_check_interval: 12\n"), 0o600))

	cfg, err := LoadPrinter(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, 12*time.Second, cfg.CheckInterval)
}

func TestLoadPrinter_Invalid(t *testing.T) {
	t.Setenv("FACTORY_TOKEN", "")
	t.Setenv("FACTORY_CHECK_INTERVAL", "0")

	_, err := LoadPrinter("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory_token is required")
	assert.Contains(t, err.Error(), "factory_check_interval must be positive")
}

func TestLoadServer(t *testing.T) {
	t.Setenv("FACTORY_TOKEN", "secret")
	t.Setenv("MYSQL_USER", "app")
	t.Setenv("MYSQL_PASSWORD", "pw")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_DATABASE", "orders")

	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "app:pw@tcp(db:3306)/orders?charset=utf8mb4&parseTime=True&loc=Local", cfg.MySQL.DSN())
}
