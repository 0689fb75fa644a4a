package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearAuthEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "ADDR", "PORT", "STORAGE_DRIVER", "DATABASE_URL",
		"JWT_SECRET", "AUTH_TOKEN_TTL", "AUTH_COOKIE_NAME",
		"AUTH_COOKIE_SAMESITE", "AUTH_COOKIE_SECURE", "TOTP_ISSUER",
		"RATE_BACKEND", "RATE_REDIS_ADDR", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_RefusesMissingSecret(t *testing.T) {
	clearAuthEnv(t)
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_RefusesPlaceholderSecret(t *testing.T) {
	clearAuthEnv(t)
	for _, bad := range []string{"change_this_secret", "CHANGEME", "secret"} {
		t.Setenv("JWT_SECRET", bad)
		_, err := Load("")
		require.Error(t, err, "placeholder %q must abort startup", bad)
	}
}

func TestLoad_RefusesShortSecret(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_SECRET", "tiny")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_SECRET", "a-perfectly-reasonable-secret")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":4000", c.Server.Addr)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "hkn_budget_token", c.Auth.Session.CookieName)
	require.Equal(t, "lax", c.Auth.Session.SameSite)
	require.False(t, c.CookieSecure(), "dev defaults to insecure cookies")
	require.Equal(t, "Budget HQ", c.TOTP.Issuer)
	require.Equal(t, 1, c.TOTP.Window)
	require.Equal(t, 25, c.Rate.Auth.Limit)
	require.Equal(t, "12h", c.Auth.SessionTTL)
	require.Positive(t, c.Auth.SessionTTLDur)
}

func TestLoad_ProdSecureCookies(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_SECRET", "a-perfectly-reasonable-secret")
	t.Setenv("APP_ENV", "prod")

	c, err := Load("")
	require.NoError(t, err)
	require.True(t, c.CookieSecure())
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearAuthEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
auth:
  jwt_secret: from-yaml-but-long-enough
  session_ttl: 6h
  session:
    cookie_name: custom_cookie
storage:
  driver: memory
`), 0o600))
	t.Setenv("AUTH_TOKEN_TTL", "3h")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom_cookie", c.Auth.Session.CookieName)
	// env wins over yaml
	require.Equal(t, "3h", c.Auth.SessionTTL)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("JWT_SECRET", "a-perfectly-reasonable-secret")
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err := Load("")
	require.Error(t, err)
}
