package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

// EnvPrefix antecede a todas las variables de entorno que pisan el YAML.
const EnvPrefix = "LOGINBRIDGE_"

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env" env:"ENV"`
		Name    string `yaml:"name" env:"NAME"`
		Version string `yaml:"version" env:"VERSION"`
	} `yaml:"app" envPrefix:"APP_"`

	Server struct {
		Addr string `yaml:"addr" env:"ADDR"`
		// Si está seteado, todo lo que no sea /login, /logout, /me, health o metrics
		// se proxea ahí con X-Forwarded-User.
		UpstreamURL     string        `yaml:"upstream_url" env:"UPSTREAM_URL"`
		TrustProxy      bool          `yaml:"trust_proxy" env:"TRUST_PROXY"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	} `yaml:"server" envPrefix:"SERVER_"`

	Storage struct {
		Driver       string        `yaml:"driver" env:"DRIVER"` // memory | postgres | sqlite
		DSN          string        `yaml:"dsn" env:"DSN"`
		MaxOpenConns int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
		MaxIdleConns int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
		Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
		// Aplica las migraciones embebidas al arrancar serve.
		Migrate bool `yaml:"migrate" env:"MIGRATE"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	Cache struct {
		Kind  string `yaml:"kind" env:"KIND"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr" env:"ADDR"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
			Prefix   string `yaml:"prefix" env:"PREFIX"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"cache" envPrefix:"CACHE_"`

	Session struct {
		CookieName string        `yaml:"cookie_name" env:"COOKIE_NAME"`
		Domain     string        `yaml:"domain" env:"DOMAIN"`
		SameSite   string        `yaml:"samesite" env:"SAMESITE"`
		Secure     bool          `yaml:"secure" env:"SECURE"`
		TTL        time.Duration `yaml:"ttl" env:"TTL"`
	} `yaml:"session" envPrefix:"SESSION_"`

	Provider struct {
		Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
		DiscoveryTTL time.Duration `yaml:"discovery_ttl" env:"DISCOVERY_TTL"`
		Leeway       time.Duration `yaml:"leeway" env:"LEEWAY"`
		// Verifica firmas contra el JWKS (explícito o descubierto).
		VerifySignatures bool `yaml:"verify_signatures" env:"VERIFY_SIGNATURES"`
	} `yaml:"provider" envPrefix:"PROVIDER_"`

	Rate struct {
		Enabled bool          `yaml:"enabled" env:"ENABLED"`
		Limit   int           `yaml:"limit" env:"LIMIT"`
		Window  time.Duration `yaml:"window" env:"WINDOW"`
	} `yaml:"rate" envPrefix:"RATE_"`

	// Valores iniciales del settings store; solo se escriben si la key no existe.
	// LOGINBRIDGE_SETTINGS_SEED="username_attribute=email;create_new_user=true"
	Settings struct {
		Seed map[string]string `yaml:"seed" env:"SEED" envSeparator:";" envKeyValSeparator:"="`
	} `yaml:"settings" envPrefix:"SETTINGS_"`

	Log struct {
		Level string `yaml:"level" env:"LEVEL"`
	} `yaml:"log" envPrefix:"LOG_"`
}

// Load lee path (si existe), aplica defaults, pisa con env y valida.
// path vacío = solo defaults + env.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// sin archivo: defaults + env
		default:
			return nil, err
		}
	}

	c.applyDefaults()

	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	c.App.Env = strings.ToLower(strings.TrimSpace(c.App.Env))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "loginbridge"
	}
	if c.App.Version == "" {
		c.App.Version = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Timeout == 0 {
		c.Storage.Timeout = 5 * time.Second
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "lb:"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "lb_sid"
	}
	if c.Session.SameSite == "" {
		c.Session.SameSite = "Lax"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Provider.DiscoveryTTL == 0 {
		c.Provider.DiscoveryTTL = time.Hour
	}
	if c.Provider.Leeway == 0 {
		c.Provider.Leeway = 30 * time.Second
	}
	if c.Rate.Limit == 0 {
		c.Rate.Limit = 10
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Settings.Seed == nil {
		c.Settings.Seed = map[string]string{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate revisa drivers y duraciones. Los settings del provider se validan
// por request, no acá.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: storage.driver %q (memory|postgres|sqlite)", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn required for driver %s", c.Storage.Driver)
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Cache.Redis.Addr) == "" {
			return errors.New("config: cache.redis.addr required for cache.kind=redis")
		}
	default:
		return fmt.Errorf("config: cache.kind %q (memory|redis)", c.Cache.Kind)
	}
	switch strings.ToLower(c.Session.SameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("config: session.samesite %q (Lax|Strict|None)", c.Session.SameSite)
	}
	if strings.EqualFold(c.Session.SameSite, "none") && !c.Session.Secure {
		return errors.New("config: session.samesite=None requires session.secure")
	}
	for name, d := range map[string]time.Duration{
		"session.ttl":             c.Session.TTL,
		"provider.timeout":        c.Provider.Timeout,
		"provider.discovery_ttl":  c.Provider.DiscoveryTTL,
		"provider.leeway":         c.Provider.Leeway,
		"rate.window":             c.Rate.Window,
		"storage.timeout":         c.Storage.Timeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("config: %s must be positive", name)
		}
	}
	if c.Rate.Limit < 0 {
		return errors.New("config: rate.limit must be positive")
	}
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("config: log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	return nil
}

// IsProd reporta si corre en prod (JSON logs).
func (c *Config) IsProd() bool { return c.App.Env == "prod" }
