package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, "lb_sid", c.Session.CookieName)
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.Equal(t, 10*time.Second, c.Provider.Timeout)
	assert.Equal(t, 30*time.Second, c.Provider.Leeway)
	assert.NotNil(t, c.Settings.Seed)
	assert.False(t, c.IsProd())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Storage.Driver)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
server:
  addr: ":9000"
storage:
  driver: sqlite
  dsn: /tmp/lb.db
provider:
  timeout: 3s
settings:
  seed:
    username_attribute: email
    create_new_user: "true"
`)
	t.Setenv("LOGINBRIDGE_SERVER_ADDR", ":9100")
	t.Setenv("LOGINBRIDGE_PROVIDER_LEEWAY", "1m")
	t.Setenv("LOGINBRIDGE_CACHE_KIND", "redis")
	t.Setenv("LOGINBRIDGE_CACHE_REDIS_ADDR", "localhost:6379")

	c, err := Load(p)
	require.NoError(t, err)

	assert.True(t, c.IsProd())
	assert.Equal(t, ":9100", c.Server.Addr)
	assert.Equal(t, "sqlite", c.Storage.Driver)
	assert.Equal(t, 3*time.Second, c.Provider.Timeout)
	assert.Equal(t, time.Minute, c.Provider.Leeway)
	assert.Equal(t, "redis", c.Cache.Kind)
	assert.Equal(t, "localhost:6379", c.Cache.Redis.Addr)
	assert.Equal(t, "email", c.Settings.Seed["username_attribute"])
	assert.Equal(t, "true", c.Settings.Seed["create_new_user"])
}

func TestLoad_SeedFromEnv(t *testing.T) {
	t.Setenv("LOGINBRIDGE_SETTINGS_SEED", "username_attribute=preferred_username;homepage=/home")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"username_attribute": "preferred_username",
		"homepage":           "/home",
	}, c.Settings.Seed)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unknown driver":  "storage:\n  driver: mongo\n",
		"missing dsn":     "storage:\n  driver: postgres\n",
		"redis sin addr":  "cache:\n  kind: redis\n",
		"samesite none":   "session:\n  samesite: None\n",
		"bad samesite":    "session:\n  samesite: sometimes\n",
		"bad level":       "log:\n  level: loud\n",
		"negative window": "rate:\n  window: -1s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeYAML(t, "server: [unterminated"))
	require.Error(t, err)
}
