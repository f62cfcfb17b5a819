package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/loginbridge/internal/http/errors"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

// LogoutController maneja POST /logout. GET no cierra sesión: un link o <img> cross-site no debe poder hacerlo.
type LogoutController struct {
	settings SettingsLoader
	sessions SessionCloser
}

func NewLogoutController(s SettingsLoader, sessions SessionCloser) *LogoutController {
	return &LogoutController{settings: s, sessions: sessions}
}

// Logout borra la sesión y la cookie. Redirige a homepage si está
// configurado; si no, 204.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	if err := c.sessions.Logout(ctx, r); err != nil {
		// la cookie se borra igual; la entrada expira sola
		log.Warn("session delete failed", logger.Err(err))
	}
	http.SetCookie(w, c.sessions.ClearCookie())

	if snap, err := c.settings.Load(ctx); err == nil && snap.Homepage != "" {
		redirect(w, snap.Homepage)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
