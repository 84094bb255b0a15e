package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Upstream  UpstreamConfig  `yaml:"upstream" mapstructure:"upstream"`
	Breaker   BreakerConfig   `yaml:"breaker" mapstructure:"breaker"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Warmup    WarmupConfig    `yaml:"warmup" mapstructure:"warmup"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// CacheConfig contains cache system configuration
type CacheConfig struct {
	Backend   string         `yaml:"backend" mapstructure:"backend" validate:"oneof=memory redis bigcache"`
	TTL       time.Duration  `yaml:"ttl" mapstructure:"ttl"`
	StaleTTL  time.Duration  `yaml:"stale_ttl" mapstructure:"stale_ttl"` // 0 keeps stale entries until overwritten
	KeyPrefix string         `yaml:"key_prefix" mapstructure:"key_prefix" validate:"required,max=64"`
	Redis     RedisConfig    `yaml:"redis" mapstructure:"redis" validate:"-"`
	BigCache  BigCacheConfig `yaml:"bigcache" mapstructure:"bigcache" validate:"-"`
}

// RedisConfig contains Redis-specific configuration
type RedisConfig struct {
	Addr        string        `yaml:"addr" mapstructure:"addr" validate:"required,hostname_port"`
	Password    string        `yaml:"password" mapstructure:"password"`
	DB          int           `yaml:"db" mapstructure:"db" validate:"min=0,max=15"`
	DialTimeout time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
}

// BigCacheConfig contains in-process bigcache sizing
type BigCacheConfig struct {
	Shards        int `yaml:"shards" mapstructure:"shards" validate:"min=1,max=1024"`
	HardMaxSizeMB int `yaml:"hard_max_size_mb" mapstructure:"hard_max_size_mb" validate:"min=0"`
}

// UpstreamConfig describes the market-data provider
type UpstreamConfig struct {
	Name              string        `yaml:"name" mapstructure:"name" validate:"required"`
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries" validate:"min=1,max=10"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int           `yaml:"burst" mapstructure:"burst" validate:"min=0"`
	QuoteCurrency     string        `yaml:"quote_currency" mapstructure:"quote_currency" validate:"required,alphanum,uppercase"`
	TopN              int           `yaml:"top_n" mapstructure:"top_n" validate:"min=1,max=500"`
}

// BreakerConfig configures the upstream circuit breaker
type BreakerConfig struct {
	FailMax      int           `yaml:"fail_max" mapstructure:"fail_max" validate:"min=1,max=100"`
	ResetTimeout time.Duration `yaml:"reset_timeout" mapstructure:"reset_timeout"`
}

// RateLimitConfig contains inbound rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" mapstructure:"burst" validate:"min=0,max=10000"`
}

// LoggingConfig contains logging system configuration
type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format     string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days" validate:"min=0"`
}

// WarmupConfig controls the top list prefetch at startup
type WarmupConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       120 * time.Second,
			StaleTTL:  24 * time.Hour,
			KeyPrefix: "crypto_api",
			Redis: RedisConfig{
				Addr:        "localhost:6379",
				DB:          1,
				DialTimeout: 5 * time.Second,
			},
			BigCache: BigCacheConfig{
				Shards:        64,
				HardMaxSizeMB: 256,
			},
		},
		Upstream: UpstreamConfig{
			Name:              "binance",
			BaseURL:           "https://api4.binance.com/api/v3/ticker/24hr",
			Timeout:           10 * time.Second,
			MaxRetries:        1,
			RetryBackoff:      200 * time.Millisecond,
			RequestsPerSecond: 10,
			Burst:             20,
			QuoteCurrency:     "USDT",
			TopN:              20,
		},
		Breaker: BreakerConfig{
			FailMax:      3,
			ResetTimeout: 60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             100,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Warmup: WarmupConfig{
			Enabled: false,
			Timeout: 15 * time.Second,
		},
	}
}
