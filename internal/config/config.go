// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Sternrassler/paapi-product-cache/pkg/amazon"
	"github.com/Sternrassler/paapi-product-cache/pkg/cache"
	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
	"github.com/Sternrassler/paapi-product-cache/pkg/signer"
)

// Config holds all application configuration.
type Config struct {
	Amazon AmazonConfig
	Redis  RedisConfig
	Cache  CacheConfig
	Log    LogConfig

	Port            string        `env:"PORT" envDefault:"8080"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
}

// AmazonConfig holds PA-API credentials and endpoint settings.
type AmazonConfig struct {
	AccessKey   string `env:"AMAZON_ACCESS_KEY"`
	SecretKey   string `env:"AMAZON_SECRET_KEY"`
	PartnerTag  string `env:"AMAZON_PARTNER_TAG"`
	Host        string `env:"AMAZON_HOST" envDefault:"webservices.amazon.com"`
	Region      string `env:"AMAZON_REGION" envDefault:"us-east-1"`
	Marketplace string `env:"AMAZON_MARKETPLACE" envDefault:"www.amazon.com"`
}

// RedisConfig holds the cache connection settings.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// CacheConfig holds cache-aside behaviour switches.
type CacheConfig struct {
	HitPolicy      string `env:"CACHE_HIT_POLICY" envDefault:"truthy"`
	Coalesce       bool   `env:"CACHE_COALESCE" envDefault:"false"`
	DegradeOnError bool   `env:"CACHE_DEGRADE_ON_ERROR" envDefault:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads configuration from the environment and validates it.
// Missing PA-API credentials fail with *signer.ConfigurationError.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot.
func (c *Config) Validate() error {
	if _, err := c.SigningContext(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if _, err := cache.ParseHitPolicy(c.Cache.HitPolicy); err != nil {
		return fmt.Errorf("invalid CACHE_HIT_POLICY: %w", err)
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("REDIS_PORT must be between 1-65535, got %d", c.Redis.Port)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	return nil
}

// SigningContext builds the PA-API signing context.
func (c *Config) SigningContext() (signer.SigningContext, error) {
	return signer.NewContext(c.Amazon.AccessKey, c.Amazon.SecretKey, c.Amazon.Region, c.Amazon.Host)
}

// ProviderConfig returns the Amazon provider settings.
func (c *Config) ProviderConfig() amazon.Config {
	return amazon.Config{
		PartnerTag:  c.Amazon.PartnerTag,
		Marketplace: c.Amazon.Marketplace,
	}
}

// CacheOptions converts the cache switches into cache.Options.
func (c *Config) CacheOptions() cache.Options {
	policy, _ := cache.ParseHitPolicy(c.Cache.HitPolicy)
	return cache.Options{
		HitPolicy:           policy,
		Coalesce:            c.Cache.Coalesce,
		DegradeOnStoreError: c.Cache.DegradeOnError,
	}
}

// LoggingConfig converts the log settings into logging.Config.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

// RedisAddr returns host:port for the cache connection.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}
