// Package session crea y lee sesiones locales respaldadas por el cache.
//
// El id crudo solo viaja en la cookie; en el cache la key es
// "sid:" + sha256(id) y el valor el payload JSON.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/loginbridge/internal/cache"
	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/metrics"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	tokens "github.com/dropDatabas3/loginbridge/internal/security/token"
)

// ErrSession: no se pudo establecer la sesión. Nunca queda una sesión a medias.
var ErrSession = errors.New("session: could not establish session")

const (
	DefaultCookieName = "lb_sid"
	DefaultTTL        = 24 * time.Hour
)

type Config struct {
	CookieName   string
	CookieDomain string
	SameSite     string // "Lax" | "Strict" | "None"
	Secure       bool
	TTL          time.Duration
}

// Session es una sesión establecida. ID es el valor de la cookie.
type Session struct {
	ID        string    `json:"-"`
	UserID    string    `json:"uid"`
	Username  string    `json:"usr"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

type Deps struct {
	Cache  cache.Client
	Users  repository.UserRepository
	Config Config
	Now    func() time.Time
}

type Establisher struct {
	cache cache.Client
	users repository.UserRepository
	cfg   Config
	now   func() time.Time
}

func NewEstablisher(d Deps) *Establisher {
	cfg := d.Config
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Establisher{cache: d.Cache, users: d.Users, cfg: cfg, now: d.Now}
}

func cacheKey(id string) string { return "sid:" + tokens.SHA256Base64URL(id) }

// CookieName retorna el nombre de la cookie de sesión.
func (e *Establisher) CookieName() string { return e.cfg.CookieName }

// Login establece una sesión para username. Cuando retorna nil la sesión ya
// es legible por el siguiente request.
func (e *Establisher) Login(ctx context.Context, username string) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("session"), logger.Op("Login"))

	// el usuario pudo desaparecer entre resolve y login
	u, err := e.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: user %q: %v", ErrSession, username, err)
	}

	id, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrSession, err)
	}
	now := e.now().UTC()
	sess := &Session{
		ID:        id,
		UserID:    u.ID,
		Username:  u.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.cfg.TTL),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrSession, err)
	}

	key := cacheKey(id)
	if err := e.cache.Set(ctx, key, string(payload), e.cfg.TTL); err != nil {
		return nil, fmt.Errorf("%w: store: %v", ErrSession, err)
	}

	if err := e.users.TouchLogin(ctx, u.ID, now); err != nil {
		// rollback: la entrada no debe sobrevivir aunque ctx esté cancelado
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if derr := e.cache.Delete(rbCtx, key); derr != nil {
			log.Error("session rollback failed", logger.UserID(u.ID), logger.Err(derr))
		}
		return nil, fmt.Errorf("%w: record login: %v", ErrSession, err)
	}

	metrics.SessionsEstablished.Inc()
	log.Debug("session created", logger.UserID(u.ID), logger.Username(u.Username))
	return sess, nil
}

// Load busca la sesión por id crudo. Expirada o desconocida => false.
func (e *Establisher) Load(ctx context.Context, id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	raw, err := e.cache.Get(ctx, cacheKey(id))
	if err != nil {
		if !cache.IsNotFound(err) {
			logger.From(ctx).Warn("session lookup failed",
				logger.Layer("service"), logger.Component("session"), logger.Op("Load"), logger.Err(err))
		}
		return nil, false
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, false
	}
	if !e.now().Before(s.ExpiresAt) {
		_ = e.cache.Delete(ctx, cacheKey(id))
		return nil, false
	}
	s.ID = id
	return &s, true
}

// FromRequest lee la cookie de sesión y carga la sesión.
func (e *Establisher) FromRequest(ctx context.Context, r *http.Request) (*Session, bool) {
	c, err := r.Cookie(e.cfg.CookieName)
	if err != nil {
		return nil, false
	}
	return e.Load(ctx, strings.TrimSpace(c.Value))
}

// Logout borra la sesión de la cookie (si hay). Sin cookie no es error.
func (e *Establisher) Logout(ctx context.Context, r *http.Request) error {
	c, err := r.Cookie(e.cfg.CookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	return e.cache.Delete(ctx, cacheKey(strings.TrimSpace(c.Value)))
}

func (e *Establisher) sameSite() http.SameSite {
	switch e.cfg.SameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Cookie arma la cookie de sesión.
func (e *Establisher) Cookie(s *Session) *http.Cookie {
	maxAge := int(s.ExpiresAt.Sub(e.now()).Seconds())
	if maxAge <= 0 {
		maxAge = int(e.cfg.TTL.Seconds())
	}
	return &http.Cookie{
		Name:     e.cfg.CookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   e.cfg.CookieDomain,
		MaxAge:   maxAge,
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   e.cfg.Secure,
		SameSite: e.sameSite(),
	}
}

// ClearCookie borra la cookie en el browser.
func (e *Establisher) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     e.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   e.cfg.CookieDomain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   e.cfg.Secure,
		SameSite: e.sameSite(),
	}
}
