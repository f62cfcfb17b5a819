package auth

import (
	"net/http"

	"github.com/dropDatabas3/loginbridge/internal/flow"
	httperrors "github.com/dropDatabas3/loginbridge/internal/http/errors"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	tokens "github.com/dropDatabas3/loginbridge/internal/security/token"
	"github.com/dropDatabas3/loginbridge/internal/session"
)

// LoginController maneja GET /login: redirige al authorize endpoint del
// provider con un state nuevo guardado en cookie.
type LoginController struct {
	settings SettingsLoader
	provider AuthURLBuilder
	secure   bool
}

func NewLoginController(s SettingsLoader, p AuthURLBuilder, secure bool) *LoginController {
	return &LoginController{settings: s, provider: p, secure: secure}
}

func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	snap, err := c.settings.Load(ctx)
	if err != nil {
		log.Error("settings unavailable", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrLoginUnavailable.WithCause(err))
		return
	}

	// ya logueado: no tiene sentido ir al provider
	if _, ok := session.FromContext(ctx); ok {
		to := snap.Homepage
		if to == "" {
			to = "/"
		}
		redirect(w, to)
		return
	}

	state, err := tokens.GenerateOpaqueToken(24)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	authURL, err := c.provider.AuthCodeURL(ctx, snap, state)
	if err != nil {
		log.Warn("cannot build authorize url", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrLoginUnavailable.WithCause(err))
		return
	}

	http.SetCookie(w, flow.StateCookie(state, c.secure))
	log.Debug("redirecting to provider")
	redirect(w, authURL)
}
