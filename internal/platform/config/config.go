// Copyright (c) 2026 Gatehouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through constructors.
*/
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by SESSION_DRIVER and LOGIN_THROTTLE_DRIVER.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// minSessionSecretLen is the HS256 key size floor for session cookies.
const minSessionSecretLen = 32

// # Configuration Schema

// Config holds all runtime configuration for the Gatehouse API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Session cookies and guard slots
	SessionSecret           string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionCookieName       string        `env:"SESSION_COOKIE_NAME"       envDefault:"gatehouse_session"`
	SessionLifetime         time.Duration `env:"SESSION_LIFETIME"          envDefault:"2h"`
	SessionRememberLifetime time.Duration `env:"SESSION_REMEMBER_LIFETIME" envDefault:"720h"`
	SessionDriver           string        `env:"SESSION_DRIVER"            envDefault:"redis"`
	CookieSecure            bool          `env:"COOKIE_SECURE"             envDefault:"true"`

	// Unified login
	LoginThrottleLimit  int           `env:"LOGIN_THROTTLE_LIMIT"  envDefault:"5"`
	LoginThrottleWindow time.Duration `env:"LOGIN_THROTTLE_WINDOW" envDefault:"1m"`
	LoginThrottleDriver string        `env:"LOGIN_THROTTLE_DRIVER" envDefault:"redis"`
	LoginParallelLookup bool          `env:"LOGIN_PARALLEL_LOOKUP" envDefault:"false"`

	// LoginEmailThrottleLimit caps attempts per email and window from all clients combined.
	LoginEmailThrottleLimit int `env:"LOGIN_EMAIL_THROTTLE_LIMIT" envDefault:"20"`

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarded headers are honoured.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// AuditQueueSize bounds the number of login attempts waiting to be written.
	AuditQueueSize int `env:"AUDIT_QUEUE_SIZE" envDefault:"256"`

	// Landing paths the symbolic login destinations resolve to.
	AdminLandingPath string `env:"ADMIN_LANDING_PATH" envDefault:"/dashboard"`
	StaffLandingPath string `env:"STAFF_LANDING_PATH" envDefault:"/staff/profile/edit"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.SessionSecret) < minSessionSecretLen {
		errs = append(errs, fmt.Errorf("config: SESSION_SECRET must be at least %d bytes", minSessionSecretLen))
	}

	if !isDriver(c.SessionDriver) {
		errs = append(errs, fmt.Errorf("config: unknown SESSION_DRIVER %q", c.SessionDriver))
	}

	if !isDriver(c.LoginThrottleDriver) {
		errs = append(errs, fmt.Errorf("config: unknown LOGIN_THROTTLE_DRIVER %q", c.LoginThrottleDriver))
	}

	if c.SessionLifetime <= 0 || c.SessionRememberLifetime <= 0 {
		errs = append(errs, errors.New("config: session lifetimes must be positive"))
	}

	if c.LoginThrottleLimit <= 0 || c.LoginThrottleWindow <= 0 || c.LoginEmailThrottleLimit <= 0 {
		errs = append(errs, errors.New("config: login throttle limits and window must be positive"))
	}

	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}

	if c.AuditQueueSize <= 0 {
		errs = append(errs, errors.New("config: AUDIT_QUEUE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the trimmed, non-empty entries of EXTRA_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// TrustedProxyPrefixes parses TRUSTED_PROXIES. Bare addresses become single-host prefixes.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TRUSTED_PROXIES entry %q", entry)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

func isDriver(driver string) bool {
	return driver == DriverRedis || driver == DriverMemory
}
