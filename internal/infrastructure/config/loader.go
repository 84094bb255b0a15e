package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every automatic env var: CRYPTO_SERVER_PORT
const EnvPrefix = "CRYPTO"

// Loader handles configuration loading using Viper
type Loader struct {
	v           *viper.Viper
	configPaths []string
	envFiles    []string
}

// NewLoader creates a new configuration loader instance
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
		configPaths: []string{
			"./configs",
			"../configs",
			".",
			"/etc/crypto-resilience",
		},
		envFiles: []string{".env"},
	}
}

// WithConfigPaths replaces the directories searched for config.yaml
func (l *Loader) WithConfigPaths(paths ...string) *Loader {
	l.configPaths = paths
	return l
}

// WithEnvFiles replaces the dotenv files loaded before reading the environment
func (l *Loader) WithEnvFiles(files ...string) *Loader {
	l.envFiles = files
	return l
}

// Load loads configuration from .env, config.yaml and environment variables
func (l *Loader) Load() (*Config, error) {
	if err := l.loadEnvFiles(); err != nil {
		return nil, err
	}

	defaults := GetDefaultConfig()
	l.setupViper(defaults)

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := GetDefaultConfig()
	if err := l.v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	l.normalize(config)

	return config, nil
}

// ConfigFileUsed returns the config file viper read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// loadEnvFiles carga los .env existentes; los ficheros ausentes se ignoran
func (l *Loader) loadEnvFiles() error {
	for _, file := range l.envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}

// setupViper configures Viper to read files and env vars
func (l *Loader) setupViper(defaults *Config) {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")
	for _, path := range l.configPaths {
		l.v.AddConfigPath(path)
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	l.setDefaults(defaults)
	l.bindEnvVars()
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal
func (l *Loader) setDefaults(d *Config) {
	defaults := map[string]interface{}{
		"server.port":                     d.Server.Port,
		"server.read_timeout":             d.Server.ReadTimeout,
		"server.write_timeout":            d.Server.WriteTimeout,
		"server.shutdown_timeout":         d.Server.ShutdownTimeout,
		"cache.backend":                   d.Cache.Backend,
		"cache.ttl":                       d.Cache.TTL,
		"cache.stale_ttl":                 d.Cache.StaleTTL,
		"cache.key_prefix":                d.Cache.KeyPrefix,
		"cache.redis.addr":                d.Cache.Redis.Addr,
		"cache.redis.password":            d.Cache.Redis.Password,
		"cache.redis.db":                  d.Cache.Redis.DB,
		"cache.redis.dial_timeout":        d.Cache.Redis.DialTimeout,
		"cache.bigcache.shards":           d.Cache.BigCache.Shards,
		"cache.bigcache.hard_max_size_mb": d.Cache.BigCache.HardMaxSizeMB,
		"upstream.name":                   d.Upstream.Name,
		"upstream.base_url":               d.Upstream.BaseURL,
		"upstream.timeout":                d.Upstream.Timeout,
		"upstream.max_retries":            d.Upstream.MaxRetries,
		"upstream.retry_backoff":          d.Upstream.RetryBackoff,
		"upstream.requests_per_second":    d.Upstream.RequestsPerSecond,
		"upstream.burst":                  d.Upstream.Burst,
		"upstream.quote_currency":         d.Upstream.QuoteCurrency,
		"upstream.top_n":                  d.Upstream.TopN,
		"breaker.fail_max":                d.Breaker.FailMax,
		"breaker.reset_timeout":           d.Breaker.ResetTimeout,
		"rate_limit.enabled":              d.RateLimit.Enabled,
		"rate_limit.requests_per_second":  d.RateLimit.RequestsPerSecond,
		"rate_limit.burst":                d.RateLimit.Burst,
		"logging.level":                   d.Logging.Level,
		"logging.format":                  d.Logging.Format,
		"logging.file":                    d.Logging.File,
		"logging.max_size_mb":             d.Logging.MaxSizeMB,
		"logging.max_backups":             d.Logging.MaxBackups,
		"logging.max_age_days":            d.Logging.MaxAgeDays,
		"warmup.enabled":                  d.Warmup.Enabled,
		"warmup.timeout":                  d.Warmup.Timeout,
	}

	for key, value := range defaults {
		l.v.SetDefault(key, value)
	}
}

// bindEnvVars maps short, conventional environment variables to configuration keys
func (l *Loader) bindEnvVars() {
	envMappings := map[string]string{
		"server.port":           "PORT",
		"cache.backend":         "CACHE_BACKEND",
		"cache.ttl":             "CACHE_TTL",
		"cache.stale_ttl":       "CACHE_STALE_TTL",
		"cache.redis.addr":      "REDIS_ADDR",
		"cache.redis.password":  "REDIS_PASSWORD",
		"cache.redis.db":        "REDIS_DB",
		"upstream.base_url":     "UPSTREAM_BASE_URL",
		"upstream.timeout":      "UPSTREAM_TIMEOUT",
		"breaker.fail_max":      "BREAKER_FAIL_MAX",
		"breaker.reset_timeout": "BREAKER_RESET_TIMEOUT",
		"logging.level":         "LOG_LEVEL",
		"logging.format":        "LOG_FORMAT",
		"rate_limit.enabled":    "RATE_LIMIT_ENABLED",
	}

	for configKey, envVar := range envMappings {
		_ = l.v.BindEnv(configKey, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(configKey, ".", "_")), envVar)
	}
}

// normalize limpia valores que llegan con formato libre desde env/yaml
func (l *Loader) normalize(config *Config) {
	config.Upstream.QuoteCurrency = strings.ToUpper(strings.TrimSpace(config.Upstream.QuoteCurrency))
	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))
	config.Logging.Level = strings.ToLower(config.Logging.Level)
	config.Logging.Format = strings.ToLower(config.Logging.Format)
}

// GetEnvironment determina el entorno actual desde ENV vars
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		env = strings.ToLower(os.Getenv("ENVIRONMENT"))
	}
	if env == "" {
		env = "development"
	}
	return env
}
