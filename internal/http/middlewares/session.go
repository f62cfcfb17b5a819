package middlewares

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/loginbridge/internal/session"
)

// SessionReader es lo que WithSession necesita del establisher.
type SessionReader interface {
	FromRequest(ctx context.Context, r *http.Request) (*session.Session, bool)
}

// WithSession carga la sesión de la cookie (si es válida) en el contexto.
// Nunca rechaza: sin sesión el request sigue anónimo.
func WithSession(sessions SessionReader) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := session.FromContext(r.Context()); !ok {
				if s, ok := sessions.FromRequest(r.Context(), r); ok {
					r = r.WithContext(session.WithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
