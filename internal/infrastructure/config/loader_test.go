package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, dir string) *Loader {
	t.Helper()
	return NewLoader().WithConfigPaths(dir).WithEnvFiles()
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	loader := newTestLoader(t, t.TempDir())

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.Empty(t, loader.ConfigFileUsed())
}

func TestLoader_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
cache:
  backend: Redis
  ttl: 30s
  stale_ttl: 1h
  redis:
    addr: cache:6380
upstream:
  quote_currency: " btc "
breaker:
  fail_max: 5
  reset_timeout: 2m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	loader := newTestLoader(t, dir)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, time.Hour, cfg.Cache.StaleTTL)
	assert.Equal(t, "cache:6380", cfg.Cache.Redis.Addr)
	assert.Equal(t, "BTC", cfg.Upstream.QuoteCurrency)
	assert.Equal(t, 5, cfg.Breaker.FailMax)
	assert.Equal(t, 2*time.Minute, cfg.Breaker.ResetTimeout)
	// valores no presentes en el fichero mantienen el default
	assert.Equal(t, 20, cfg.Upstream.TopN)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), loader.ConfigFileUsed())
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9090\n"), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("CRYPTO_CACHE_TTL", "45s")
	t.Setenv("BREAKER_FAIL_MAX", "7")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := newTestLoader(t, dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 7, cfg.Breaker.FailMax)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoader_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CRYPTO_UPSTREAM_TOP_N=5\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CRYPTO_UPSTREAM_TOP_N") })

	cfg, err := NewLoader().WithConfigPaths(dir).WithEnvFiles(envFile, filepath.Join(dir, "missing.env")).Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Upstream.TopN)
}

func TestLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := newTestLoader(t, dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Staging")
	assert.Equal(t, "staging", GetEnvironment())

	t.Setenv("ENV", "PRODUCTION")
	assert.Equal(t, "production", GetEnvironment())
}
