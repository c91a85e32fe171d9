// Package config loads server settings from the environment. A .env file in
// the working directory is read first when present; real environment
// variables take precedence over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DevelopmentSecret is the JWT secret used when none is configured outside production.
const DevelopmentSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LogConfig
	Render    RenderConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port       string `envconfig:"PORT" default:"8080"`
	Host       string `envconfig:"HOST" default:"0.0.0.0"`
	StaticPath string `envconfig:"STATIC_PATH"`
	// TrustedProxies lists the addresses or CIDR ranges allowed to set X-Forwarded-For.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// Proxies parses TrustedProxies. A bare address is a single-host range.
func (s ServerConfig) Proxies() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range s.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `envconfig:"DB_PATH" default:"./data/codecanvas.db"`
	// RedisURL enables the shared sign-out list when set.
	RedisURL string `envconfig:"REDIS_URL"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT"`
}

// RenderConfig holds headless preview limits.
type RenderConfig struct {
	Timeout       time.Duration `envconfig:"RENDER_TIMEOUT" default:"2s"`
	MaxConcurrent int           `envconfig:"RENDER_MAX_CONCURRENT" default:"8"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv loads configuration from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings and fills the development JWT secret.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Auth.JWTSecret == "" {
		if c.Production() {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = DevelopmentSecret
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Render.Timeout <= 0 {
		return fmt.Errorf("RENDER_TIMEOUT must be positive")
	}
	if c.Render.MaxConcurrent <= 0 {
		return fmt.Errorf("RENDER_MAX_CONCURRENT must be positive")
	}
	if _, err := c.Server.Proxies(); err != nil {
		return err
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// LogFormat returns LOG_FORMAT, defaulting to JSON in production and
// colored text elsewhere.
func (c *Config) LogFormat() string {
	if c.Logging.Format != "" {
		return c.Logging.Format
	}
	if c.Production() {
		return "json"
	}
	return "text"
}
