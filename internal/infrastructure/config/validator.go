package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator valida la configuración cargada
type Validator struct {
	validate *validator.Validate
}

// NewValidator crea una nueva instancia del validador
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate valida toda la configuración
func (v *Validator) Validate(config *Config) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	if err := v.validateServer(config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := v.validateCache(config.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := v.validateUpstream(config.Upstream); err != nil {
		return fmt.Errorf("upstream config validation failed: %w", err)
	}

	if err := v.validateBreaker(config.Breaker); err != nil {
		return fmt.Errorf("breaker config validation failed: %w", err)
	}

	if err := v.validateRateLimit(config.RateLimit); err != nil {
		return fmt.Errorf("rate limit config validation failed: %w", err)
	}

	if err := v.validateLogging(config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}

	if config.Warmup.Enabled && config.Warmup.Timeout <= 0 {
		return fmt.Errorf("warmup config validation failed: timeout must be positive, got: %v", config.Warmup.Timeout)
	}

	return nil
}

// validateServer valida la configuración del servidor
func (v *Validator) validateServer(config ServerConfig) error {
	if err := v.structErr(config); err != nil {
		return err
	}

	if config.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got: %v", config.ShutdownTimeout)
	}

	if config.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown_timeout too long: %v, max 5 minutes", config.ShutdownTimeout)
	}

	if config.ReadTimeout < 0 || config.WriteTimeout < 0 {
		return fmt.Errorf("read/write timeouts cannot be negative")
	}

	return nil
}

// validateCache valida la configuración del cache
func (v *Validator) validateCache(config CacheConfig) error {
	if err := v.structErr(config); err != nil {
		return err
	}

	if config.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.TTL)
	}

	if config.TTL > 24*time.Hour {
		return fmt.Errorf("cache TTL too long: %v, max 24 hours", config.TTL)
	}

	// stale_ttl=0 conserva la copia stale hasta que se sobrescriba
	if config.StaleTTL < 0 {
		return fmt.Errorf("cache stale_ttl cannot be negative, got: %v", config.StaleTTL)
	}

	if config.StaleTTL > 0 && config.StaleTTL < config.TTL {
		return fmt.Errorf("cache stale_ttl (%v) must be 0 or at least ttl (%v)", config.StaleTTL, config.TTL)
	}

	switch config.Backend {
	case "redis":
		if err := v.validateRedis(config.Redis); err != nil {
			return err
		}
	case "bigcache":
		if err := v.structErr(config.BigCache); err != nil {
			return fmt.Errorf("bigcache: %w", err)
		}
		if config.BigCache.Shards&(config.BigCache.Shards-1) != 0 {
			return fmt.Errorf("bigcache shards must be a power of two, got: %d", config.BigCache.Shards)
		}
	}

	return nil
}

// validateRedis valida la configuración de Redis
func (v *Validator) validateRedis(config RedisConfig) error {
	if err := v.structErr(config); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if config.DialTimeout < 0 {
		return fmt.Errorf("redis dial_timeout cannot be negative, got: %v", config.DialTimeout)
	}

	return nil
}

// validateUpstream valida el proveedor de datos de mercado
func (v *Validator) validateUpstream(config UpstreamConfig) error {
	if err := v.structErr(config); err != nil {
		return err
	}

	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return fmt.Errorf("invalid base_url scheme: %s, must be http or https", config.BaseURL)
	}

	if config.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got: %v", config.Timeout)
	}

	if config.RetryBackoff < 0 {
		return fmt.Errorf("upstream retry_backoff cannot be negative, got: %v", config.RetryBackoff)
	}

	return nil
}

// validateBreaker valida los umbrales del circuit breaker
func (v *Validator) validateBreaker(config BreakerConfig) error {
	if err := v.structErr(config); err != nil {
		return err
	}

	if config.ResetTimeout <= 0 {
		return fmt.Errorf("breaker reset_timeout must be positive, got: %v", config.ResetTimeout)
	}

	return nil
}

// validateRateLimit valida la configuración de rate limiting
func (v *Validator) validateRateLimit(config RateLimitConfig) error {
	if err := v.structErr(config); err != nil {
		return err
	}

	if config.Enabled {
		if config.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit requests_per_second must be positive when enabled, got: %v", config.RequestsPerSecond)
		}

		if config.Burst <= 0 {
			return fmt.Errorf("rate_limit burst must be positive when enabled, got: %d", config.Burst)
		}
	}

	return nil
}

// validateLogging valida la configuración de logging
func (v *Validator) validateLogging(config LoggingConfig) error {
	return v.structErr(config)
}

// structErr runs the tag rules and flattens the first failure into a readable error
func (v *Validator) structErr(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fe := validationErrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("invalid %s: %v (rule %s=%s)", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("invalid %s: %v (rule %s)", fe.Namespace(), fe.Value(), fe.Tag())
}
