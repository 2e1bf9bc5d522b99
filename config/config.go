// Package config builds the portal's runtime settings from defaults, the
// environment (with a .env fallback) and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cameronmore/go-courses/env"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds runtime settings for the portal server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - DatabaseDriver / DatabaseDSN: "sqlite3" with a file path, or "pgx" with a PostgreSQL DSN.
//   - SecretKey: HMAC secret for signing session tokens. Required.
//   - CoursesFile: optional JSON catalog replacing the bundled one.
//   - CookieSecure: mark the session cookie Secure (HTTPS only).
//   - LogLevel: zerolog level name.
//   - LoginRate / LoginBurst: per client limit on login and signup attempts (per second).
//   - TrustProxy: take the client address from X-Forwarded-For / X-Real-IP. Only enable
//     behind a proxy that overwrites those headers.
type Config struct {
	Addr           string
	DatabaseDriver string
	DatabaseDSN    string
	SecretKey      string
	CoursesFile    string
	CookieSecure   bool
	LogLevel       string
	LoginRate      float64
	LoginBurst     int
	TrustProxy     bool
}

// LoadDefaults populates Config with development defaults. There is no default secret.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "portal.db"
	c.SecretKey = ""
	c.CoursesFile = ""
	c.CookieSecure = false
	c.LogLevel = "info"
	c.LoginRate = 1
	c.LoginBurst = 5
	c.TrustProxy = false
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("config: a secret key is required (PORTAL_SECRET_KEY or -s)")
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("config: a database DSN is required")
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return errors.New("config: login rate and burst must be positive")
	}
	return nil
}

// LoadConfig applies defaults, then the environment and envFile, then args.
func LoadConfig(envFile string, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	src, err := env.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
	}
	if err := applyEnv(cfg, src); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config, src *env.Source) error {
	str := func(key string, dst *string) {
		if v, ok := src.Get(key); ok {
			*dst = v
		}
	}
	str("PORTAL_ADDR", &c.Addr)
	str("PORTAL_DB_DRIVER", &c.DatabaseDriver)
	str("PORTAL_DB_DSN", &c.DatabaseDSN)
	str("PORTAL_SECRET_KEY", &c.SecretKey)
	str("PORTAL_COURSES_FILE", &c.CoursesFile)
	str("PORTAL_LOG_LEVEL", &c.LogLevel)

	if v, ok := src.Get("PORTAL_COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PORTAL_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v, ok := src.Get("PORTAL_TRUST_PROXY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PORTAL_TRUST_PROXY: %w", err)
		}
		c.TrustProxy = b
	}
	if v, ok := src.Get("PORTAL_LOGIN_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: PORTAL_LOGIN_RATE: %w", err)
		}
		c.LoginRate = f
	}
	if v, ok := src.Get("PORTAL_LOGIN_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PORTAL_LOGIN_BURST: %w", err)
		}
		c.LoginBurst = n
	}
	return nil
}
