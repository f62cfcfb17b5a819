// Package auth contiene los controllers de inicio y cierre de sesión.
// El callback no tiene controller: lo resuelve el middleware del flujo en
// cualquier ruta que reciba ?code=.
package auth

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// SettingsLoader lee el snapshot del request.
type SettingsLoader interface {
	Load(ctx context.Context) (settings.Snapshot, error)
}

// AuthURLBuilder arma la URL de autorización del provider.
type AuthURLBuilder interface {
	AuthCodeURL(ctx context.Context, snap settings.Snapshot, state string) (string, error)
}

// SessionCloser borra sesiones.
type SessionCloser interface {
	Logout(ctx context.Context, r *http.Request) error
	ClearCookie() *http.Cookie
}

type Deps struct {
	Settings SettingsLoader
	Provider AuthURLBuilder
	Sessions SessionCloser
	// SecureCookies marca Secure la cookie de state.
	SecureCookies bool
}

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login  *LoginController
	Logout *LogoutController
	Me     *MeController
}

func NewControllers(d Deps) *Controllers {
	return &Controllers{
		Login:  NewLoginController(d.Settings, d.Provider, d.SecureCookies),
		Logout: NewLogoutController(d.Settings, d.Sessions),
		Me:     NewMeController(),
	}
}

// redirect escribe un 302 sin body.
func redirect(w http.ResponseWriter, to string) {
	w.Header().Set("Location", to)
	w.WriteHeader(http.StatusFound)
}
