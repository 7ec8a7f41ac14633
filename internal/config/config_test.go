package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPServer.Address())
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, "CHF", cfg.Currency.Reference)
	assert.Equal(t, []string{"JPY", "EUR"}, cfg.Currency.Display)
	assert.Equal(t, "JPY", cfg.Currency.DefaultDisplay)
	assert.Equal(t, 12*time.Hour, cfg.RateProvider.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.RateProvider.Timeout)
	assert.Equal(t, "donation-events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("KOFI_VERIFICATION_TOKEN", "secret")
	t.Setenv("DISPLAY_CURRENCIES", " jpy, eur ,usd,")
	t.Setenv("REFERENCE_CURRENCY", "chf")
	t.Setenv("RATE_CACHE_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Webhook.VerificationToken)
	assert.Equal(t, []string{"JPY", "EUR", "USD"}, cfg.Currency.Display)
	assert.Equal(t, "CHF", cfg.Currency.Reference)
	assert.Equal(t, time.Hour, cfg.RateProvider.CacheTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
env: production
http_server:
  port: "9090"
webhook:
  verification_token: from-file
currency:
  default_display: eur
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "9090", cfg.HTTPServer.Port)
	assert.Equal(t, "from-file", cfg.Webhook.VerificationToken)
	assert.Equal(t, "EUR", cfg.Currency.DefaultDisplay)
	assert.Equal(t, "CHF", cfg.Currency.Reference)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find config file")
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
