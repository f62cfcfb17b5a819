// Package server conecta config, store, cache y servicios en un http.Handler.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/loginbridge/internal/cache"
	"github.com/dropDatabas3/loginbridge/internal/config"
	"github.com/dropDatabas3/loginbridge/internal/flow"
	"github.com/dropDatabas3/loginbridge/internal/http/controllers/auth"
	"github.com/dropDatabas3/loginbridge/internal/http/controllers/health"
	"github.com/dropDatabas3/loginbridge/internal/http/controllers/upstream"
	mw "github.com/dropDatabas3/loginbridge/internal/http/middlewares"
	"github.com/dropDatabas3/loginbridge/internal/http/router"
	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/metrics"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/provider"
	"github.com/dropDatabas3/loginbridge/internal/rate"
	"github.com/dropDatabas3/loginbridge/internal/session"
	"github.com/dropDatabas3/loginbridge/internal/settings"
	"github.com/dropDatabas3/loginbridge/internal/store"
	_ "github.com/dropDatabas3/loginbridge/internal/store/adapters/dal"
	"github.com/dropDatabas3/loginbridge/internal/users"
	"github.com/dropDatabas3/loginbridge/migrations"
)

// App es el resultado de Build. Close libera store y cache.
type App struct {
	Handler  http.Handler
	Store    store.AdapterConnection
	Cache    cache.Client
	Settings *settings.Store

	closers []func() error
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options para tests: Registry propio y HTTPClient hacia el provider.
type Options struct {
	Registry   *prometheus.Registry
	HTTPClient *http.Client
}

// OpenStore abre el store configurado y, si corresponde, migra.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool) (store.AdapterConnection, error) {
	log := logger.From(ctx).With(logger.Layer("wiring"), logger.Driver(cfg.Storage.Driver))

	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
		MaxIdleConns: cfg.Storage.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if !migrate {
		return conn, nil
	}
	if _, ok := conn.(store.MigratableConnection); !ok {
		return conn, nil
	}

	fsys, err := migrations.ForDriver(cfg.Storage.Driver)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	res, err := store.Migrate(ctx, conn, fsys)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if res != nil {
		log.Info("migrations applied",
			logger.Count(len(res.Applied)),
			logger.Int("skipped", len(res.Skipped)),
			logger.Duration(res.Duration))
	}
	return conn, nil
}

// Build arma el handler completo.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	log := logger.From(ctx).With(logger.Layer("wiring"))
	app := &App{}

	// 1. Store + settings
	conn, err := OpenStore(ctx, cfg, cfg.Storage.Migrate)
	if err != nil {
		return nil, err
	}
	app.Store = conn
	app.closers = append(app.closers, conn.Close)

	app.Settings = settings.NewStore(conn.Settings())
	if n, err := app.Settings.SeedDefaults(ctx, cfg.Settings.Seed); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("settings seed: %w", err)
	} else if n > 0 {
		log.Info("settings seeded", logger.Count(n))
	}

	// 2. Cache + rate limiter (comparten el cliente redis)
	var limiter rate.Limiter
	switch cfg.Cache.Kind {
	case "redis":
		rdb, err := cache.DialRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Cache = cache.NewRedisFromClient(rdb, cfg.Cache.Redis.Prefix)
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+"rl:", cfg.Rate.Limit, cfg.Rate.Window)
		}
	default:
		app.Cache = cache.NewMemory("")
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Rate.Limit, cfg.Rate.Window)
		}
	}
	app.closers = append(app.closers, app.Cache.Close)

	// 3. Métricas
	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	if opts.Registry != nil {
		reg = opts.Registry
	}
	if err := metrics.Register(reg); err != nil {
		_ = app.Close()
		return nil, err
	}
	metricsHandler, err := metrics.RegisterHTTP(reg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if ps, ok := conn.(store.PoolStater); ok {
		if err := metrics.RegisterDBPool(reg, conn.Name(), func() (metrics.PoolStat, bool) {
			s := ps.PoolStats()
			return metrics.PoolStat{Acquired: s.Acquired, Idle: s.Idle, Total: s.Total}, true
		}); err != nil {
			log.Warn("pool metrics disabled", logger.Err(err))
		}
	}

	// 4. Servicios del flujo
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Provider.Timeout}
	}
	prov := provider.NewClient(provider.Deps{
		HTTPClient:   httpClient,
		Timeout:      cfg.Provider.Timeout,
		DiscoveryTTL: cfg.Provider.DiscoveryTTL,
	})
	sessions := session.NewEstablisher(session.Deps{
		Cache: app.Cache,
		Users: conn.Users(),
		Config: session.Config{
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.Domain,
			SameSite:     cfg.Session.SameSite,
			Secure:       cfg.Session.Secure,
			TTL:          cfg.Session.TTL,
		},
	})
	clientIP := mw.ClientIP(cfg.Server.TrustProxy)

	flowDeps := flow.Deps{
		Settings:       app.Settings,
		Provider:       prov,
		Verifier:       idtoken.NewVerifier(idtoken.Deps{Leeway: cfg.Provider.Leeway}),
		Users:          users.NewResolver(users.Deps{Users: conn.Users()}),
		Sessions:       sessions,
		ClientIP:       clientIP,
		StorageTimeout: cfg.Storage.Timeout,
		Limiter:        limiter,
	}
	if cfg.Provider.VerifySignatures {
		flowDeps.Keys = idtoken.NewKeySets(httpClient)
	}
	login := flow.NewController(flowDeps)

	// 5. Upstream
	var up http.Handler
	if cfg.Server.UpstreamURL != "" {
		up, err = upstream.NewProxy(cfg.Server.UpstreamURL)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
	} else {
		up = upstream.Status(cfg.App.Name)
	}

	app.Handler = router.New(router.Deps{
		Auth: auth.NewControllers(auth.Deps{
			Settings:      app.Settings,
			Provider:      prov,
			Sessions:      sessions,
			SecureCookies: cfg.Session.Secure,
		}),
		Health: health.NewController(health.Deps{
			Components: map[string]health.Pinger{"store": conn, "cache": app.Cache},
			Version:    cfg.App.Version,
		}),
		Sessions: sessions,
		Login:    login.Middleware,
		Upstream: up,
		Metrics:  metricsHandler,
		ClientIP: clientIP,
	})

	log.Info("handler built",
		logger.Driver(conn.Name()),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.Bool("verify_signatures", cfg.Provider.VerifySignatures),
		logger.Bool("upstream", cfg.Server.UpstreamURL != ""))
	return app, nil
}
