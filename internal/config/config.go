package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// insecureSecrets are placeholder values that must never sign tokens.
// Starting with one of these is a hard failure, not a warning.
var insecureSecrets = map[string]struct{}{
	"change_this_secret": {},
	"changeme":           {},
	"secret":             {},
	"dev-secret":         {},
	"test":               {},
}

const minSecretLen = 16

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MinIdleConns    int    `yaml:"min_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Auth struct {
		JWTSecret  string `yaml:"jwt_secret"`
		Issuer     string `yaml:"issuer"`
		SessionTTL string `yaml:"session_ttl"`
		Session    struct {
			CookieName string `yaml:"cookie_name"`
			Domain     string `yaml:"domain"`
			SameSite   string `yaml:"samesite"`
			Secure     *bool  `yaml:"secure"`
		} `yaml:"session"`

		// parsed in Validate
		SessionTTLDur time.Duration `yaml:"-"`
	} `yaml:"auth"`

	TOTP struct {
		// Issuer label embedded in the otpauth:// enrollment URI.
		Issuer string `yaml:"issuer"`
		// Accepted clock-skew steps on each side of the current one.
		Window int `yaml:"window"`
	} `yaml:"totp"`

	Rate struct {
		// Disabled turns off both limiters; meant for load tests only.
		Disabled bool `yaml:"disabled"`
		// memory | redis
		Backend string `yaml:"backend"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Auth struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"auth"`
		Global struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"global"`

		AuthWindowDur   time.Duration `yaml:"-"`
		GlobalWindowDur time.Duration `yaml:"-"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads an optional YAML file, layers env overrides on top, applies
// defaults and validates. A missing file is fine; a bad secret is not.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// env-only setup
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.App.Env, "APP_ENV")
	set(&c.Server.Addr, "ADDR")
	set(&c.Storage.Driver, "STORAGE_DRIVER")
	set(&c.Storage.DSN, "DATABASE_URL")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Auth.SessionTTL, "AUTH_TOKEN_TTL")
	set(&c.Auth.Session.CookieName, "AUTH_COOKIE_NAME")
	set(&c.Auth.Session.SameSite, "AUTH_COOKIE_SAMESITE")
	set(&c.TOTP.Issuer, "TOTP_ISSUER")
	set(&c.Rate.Backend, "RATE_BACKEND")
	set(&c.Rate.Redis.Addr, "RATE_REDIS_ADDR")
	set(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("AUTH_COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			c.Auth.Session.Secure = &b
		}
	}
	if v := os.Getenv("PORT"); v != "" && c.Server.Addr == "" {
		c.Server.Addr = ":" + v
	}
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":4000"
	}
	if c.Storage.Driver == "" {
		if c.Storage.DSN != "" {
			c.Storage.Driver = "postgres"
		} else {
			c.Storage.Driver = "memory"
		}
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "budgethq"
	}
	if c.Auth.SessionTTL == "" {
		c.Auth.SessionTTL = "12h"
	}
	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "hkn_budget_token"
	}
	if c.Auth.Session.SameSite == "" {
		c.Auth.Session.SameSite = "lax"
	}
	if c.Auth.Session.Secure == nil {
		// secure-by-default outside dev
		secure := c.App.Env == "prod" || c.App.Env == "staging"
		c.Auth.Session.Secure = &secure
	}
	if c.TOTP.Issuer == "" {
		c.TOTP.Issuer = "Budget HQ"
	}
	if c.TOTP.Window <= 0 || c.TOTP.Window > 3 {
		c.TOTP.Window = 1
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Auth.Limit == 0 {
		c.Rate.Auth.Limit = 25
	}
	if c.Rate.Auth.Window == "" {
		c.Rate.Auth.Window = "15m"
	}
	if c.Rate.Global.Limit == 0 {
		c.Rate.Global.Limit = 500
	}
	if c.Rate.Global.Window == "" {
		c.Rate.Global.Window = "15m"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate enforces the startup invariants. The signing secret one is
// deliberately fatal: serving traffic with a guessable trust root is
// worse than not serving at all.
func (c *Config) Validate() error {
	sec := strings.TrimSpace(c.Auth.JWTSecret)
	if sec == "" {
		return fmt.Errorf("config: auth.jwt_secret (JWT_SECRET) must be set")
	}
	if _, bad := insecureSecrets[strings.ToLower(sec)]; bad {
		return fmt.Errorf("config: auth.jwt_secret is a known placeholder; set a real secret")
	}
	if len(sec) < minSecretLen {
		return fmt.Errorf("config: auth.jwt_secret too short (min %d bytes)", minSecretLen)
	}

	var err error
	if c.Auth.SessionTTLDur, err = time.ParseDuration(c.Auth.SessionTTL); err != nil || c.Auth.SessionTTLDur <= 0 {
		return fmt.Errorf("config: invalid auth.session_ttl %q", c.Auth.SessionTTL)
	}
	if c.Rate.AuthWindowDur, err = time.ParseDuration(c.Rate.Auth.Window); err != nil || c.Rate.AuthWindowDur <= 0 {
		return fmt.Errorf("config: invalid rate.auth.window %q", c.Rate.Auth.Window)
	}
	if c.Rate.GlobalWindowDur, err = time.ParseDuration(c.Rate.Global.Window); err != nil || c.Rate.GlobalWindowDur <= 0 {
		return fmt.Errorf("config: invalid rate.global.window %q", c.Rate.Global.Window)
	}
	if c.Storage.Driver != "postgres" && c.Storage.Driver != "memory" {
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn (DATABASE_URL) required for postgres driver")
	}
	return nil
}

// CookieSecure dereferences the tri-state secure flag.
func (c *Config) CookieSecure() bool {
	return c.Auth.Session.Secure != nil && *c.Auth.Session.Secure
}
