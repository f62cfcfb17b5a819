// Package router arma el árbol de rutas chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/loginbridge/internal/http/controllers/auth"
	"github.com/dropDatabas3/loginbridge/internal/http/controllers/health"
	mw "github.com/dropDatabas3/loginbridge/internal/http/middlewares"
)

type Deps struct {
	Auth   *auth.Controllers
	Health *health.Controller

	// Sessions carga la sesión de la cookie antes del flujo.
	Sessions mw.SessionReader
	// Login es el middleware del flujo de login (flow.Controller.Middleware).
	Login mw.Middleware

	// Upstream sirve todo lo demás (proxy o estado).
	Upstream http.Handler
	// Metrics es el handler de /metrics (nil = no se expone).
	Metrics http.Handler

	ClientIP func(*http.Request) string
}

// New registra:
//
//	GET  /healthz, /readyz, /metrics   sin sesión ni flujo
//	GET  /login                        inicio del code flow
//	GET|POST /logout
//	GET  /me
//	*    /*                            upstream
//
// Todo salvo health y metrics pasa por el flujo: cualquier ruta con ?code= es
// un callback válido.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(d.ClientIP),
		mw.WithMetrics(),
	)

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.WithSession(d.Sessions))
		if d.Login != nil {
			r.Use(d.Login)
		}

		r.Group(func(r chi.Router) {
			r.Use(mw.WithSecurityHeaders(), mw.WithNoStore())
			r.Get("/login", d.Auth.Login.Login)
			// GET llega al controller para responder 405 en vez de caer al upstream
			r.Get("/logout", d.Auth.Logout.Logout)
			r.Post("/logout", d.Auth.Logout.Logout)
			r.Get("/me", d.Auth.Me.Me)
		})

		r.Handle("/*", d.Upstream)
	})

	return r
}
