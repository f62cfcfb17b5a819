// Package flow orquesta un intento de login: code -> token -> claims ->
// usuario local -> sesión -> redirect opcional.
//
// Cualquier falla termina en Done sin sesión y sin nada visible para el
// usuario; el operador recibe un evento estructurado y una métrica por outcome.
package flow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/loginbridge/internal/claims"
	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/metrics"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/provider"
	"github.com/dropDatabas3/loginbridge/internal/rate"
	tokens "github.com/dropDatabas3/loginbridge/internal/security/token"
	"github.com/dropDatabas3/loginbridge/internal/session"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

// StateCookieName guarda el state emitido por /login hasta el callback.
const StateCookieName = "lb_state"

// ─── Colaboradores ───

type SettingsLoader interface {
	Load(ctx context.Context) (settings.Snapshot, error)
}

type Exchanger interface {
	Endpoints(ctx context.Context, snap settings.Snapshot) (provider.Endpoints, error)
	Exchange(ctx context.Context, snap settings.Snapshot, code string) (*provider.TokenResponse, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, raw string, exp idtoken.Expectations) (idtoken.Claims, error)
}

type KeySource interface {
	ForURI(uri string) idtoken.KeySet
}

type UserResolver interface {
	Resolve(ctx context.Context, username string, profile claims.Profile, allowCreate bool) (*repository.User, error)
}

type SessionManager interface {
	FromRequest(ctx context.Context, r *http.Request) (*session.Session, bool)
	Login(ctx context.Context, username string) (*session.Session, error)
	Cookie(s *session.Session) *http.Cookie
}

type Deps struct {
	Settings SettingsLoader
	Provider Exchanger
	Verifier TokenVerifier
	Keys     KeySource // nil = sin verificación de firma
	Users    UserResolver
	Sessions SessionManager
	Limiter  rate.Limiter // nil = sin límite

	// ClientIP clave del rate limit (default: host de RemoteAddr).
	ClientIP func(*http.Request) string
	// StorageTimeout acota directorio y sesión (default 5s).
	StorageTimeout time.Duration
}

// Result es el resultado de Attempt.
type Result struct {
	State    State // terminal: Redirected o Done
	FailedAt State // último estado alcanzado antes de abortar (Idle si no abortó)
	Outcome  Outcome
	Err      error

	User    *repository.User
	Session *session.Session
}

// OK reporta si quedó una sesión establecida.
func (r Result) OK() bool { return r.Outcome == OutcomeSuccess || r.Outcome == OutcomeRedirected }

type Controller struct {
	settings SettingsLoader
	provider Exchanger
	verifier TokenVerifier
	keys     KeySource
	users    UserResolver
	sessions SessionManager
	limiter  rate.Limiter
	clientIP func(*http.Request) string
	timeout  time.Duration
}

func NewController(d Deps) *Controller {
	if d.ClientIP == nil {
		d.ClientIP = remoteHost
	}
	if d.StorageTimeout <= 0 {
		d.StorageTimeout = 5 * time.Second
	}
	return &Controller{
		settings: d.Settings,
		provider: d.Provider,
		verifier: d.Verifier,
		keys:     d.Keys,
		users:    d.Users,
		sessions: d.Sessions,
		limiter:  d.Limiter,
		clientIP: d.ClientIP,
		timeout:  d.StorageTimeout,
	}
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Attempt corre el flujo sobre r. Solo escribe en w cuando hay sesión:
// la cookie, y el 302 si hay homepage.
func (c *Controller) Attempt(w http.ResponseWriter, r *http.Request) Result {
	ctx := r.Context()
	res := Result{State: Idle}

	// Idle -> CodePresent
	code, ok := provider.ExtractCode(r)
	if !ok {
		return c.report(ctx, r, res.end(OutcomeNoCode, nil))
	}
	if _, authed := session.FromContext(ctx); authed {
		return c.report(ctx, r, res.end(OutcomeAuthenticated, nil))
	}
	if _, authed := c.sessions.FromRequest(ctx, r); authed {
		return c.report(ctx, r, res.end(OutcomeAuthenticated, nil))
	}
	res.State = CodePresent

	snap, err := c.settings.Load(ctx)
	if err != nil {
		return c.report(ctx, r, res.fail(fmt.Errorf("%w: %v", settings.ErrIncomplete, err)))
	}
	if err := snap.Validate(); err != nil {
		return c.report(ctx, r, res.fail(err))
	}

	// CodePresent -> TokenObtained
	if err := c.allow(ctx, r); err != nil {
		return c.report(ctx, r, res.fail(err))
	}
	if snap.RequireState {
		if err := checkState(r); err != nil {
			return c.report(ctx, r, res.fail(err))
		}
	}
	tr, err := c.provider.Exchange(ctx, snap, code)
	if err != nil {
		return c.report(ctx, r, res.fail(err), logger.ClientID(snap.ClientID))
	}
	res.State = TokenObtained

	// TokenObtained -> ClaimsDecoded
	decoded, err := c.verifier.Verify(ctx, tr.IDToken, c.expectations(ctx, snap))
	if err != nil {
		return c.report(ctx, r, res.fail(err))
	}
	res.State = ClaimsDecoded

	// ClaimsDecoded -> UserResolved
	username, err := claims.ExtractUsername(decoded, snap.UsernameAttribute)
	if err != nil {
		return c.report(ctx, r, res.fail(err), logger.Attribute(snap.UsernameAttribute))
	}
	sctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	u, err := c.users.Resolve(sctx, username, claims.ExtractProfile(decoded, snap), snap.CreateNewUser)
	if err != nil {
		return c.report(ctx, r, res.fail(err))
	}
	res.User = u
	res.State = UserResolved

	// UserResolved -> SessionEstablished
	sess, err := c.sessions.Login(sctx, u.Username)
	if err != nil {
		return c.report(ctx, r, res.fail(err))
	}
	res.Session = sess
	res.State = SessionEstablished

	http.SetCookie(w, c.sessions.Cookie(sess))
	if snap.RequireState {
		http.SetCookie(w, ClearStateCookie())
	}

	// SessionEstablished -> Redirected | Done
	if snap.Homepage != "" {
		w.Header().Set("Location", snap.Homepage)
		w.WriteHeader(http.StatusFound)
		res.State = Redirected
		res.Outcome = OutcomeRedirected
		return c.report(ctx, r, res)
	}
	return c.report(ctx, r, res.end(OutcomeSuccess, nil))
}

func (r Result) end(o Outcome, err error) Result {
	r.State = Done
	r.Outcome = o
	r.Err = err
	return r
}

func (r Result) fail(err error) Result {
	r.FailedAt = r.State
	return r.end(classify(err), err)
}

// expectations: firma, issuer y audience solo cuando hay JWKS conocido;
// exp/nbf siempre.
func (c *Controller) expectations(ctx context.Context, snap settings.Snapshot) idtoken.Expectations {
	if c.keys == nil {
		return idtoken.Expectations{}
	}
	ep, err := c.provider.Endpoints(ctx, snap)
	if err != nil || ep.JWKSURI == "" {
		logger.From(ctx).Warn("signature verification skipped: no jwks_uri resolved",
			logger.Layer("service"), logger.Component("flow"), logger.Op("Attempt"),
			logger.ClientID(snap.ClientID), logger.Err(err))
		return idtoken.Expectations{}
	}
	return idtoken.Expectations{
		KeySet:   c.keys.ForURI(ep.JWKSURI),
		Issuer:   ep.Issuer,
		Audience: snap.ClientID,
	}
}

// allow aplica el rate limit. Si el limiter falla, se permite.
func (c *Controller) allow(ctx context.Context, r *http.Request) error {
	if c.limiter == nil {
		return nil
	}
	ip := c.clientIP(r)
	res, err := c.limiter.Allow(ctx, "login:"+ip)
	if err != nil {
		logger.From(ctx).Warn("rate limiter unavailable",
			logger.Layer("service"), logger.Component("flow"), logger.ClientIP(ip), logger.Err(err))
		return nil
	}
	if !res.Allowed {
		return fmt.Errorf("%w: %s retry in %s", ErrRateLimited, ip, res.RetryAfter)
	}
	return nil
}

func checkState(r *http.Request) error {
	got := r.URL.Query().Get("state")
	ck, err := r.Cookie(StateCookieName)
	if err != nil {
		return fmt.Errorf("%w: no state cookie", ErrStateMismatch)
	}
	if !tokens.Equal(got, ck.Value) {
		return fmt.Errorf("%w: callback state does not match", ErrStateMismatch)
	}
	return nil
}

// StateCookie arma la cookie de state que espera el callback.
func StateCookie(state string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearStateCookie borra la cookie de state.
func ClearStateCookie() *http.Cookie {
	return &http.Cookie{Name: StateCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode}
}

// report emite un evento por intento y cuenta el outcome.
// extra se agrega solo al evento de falla.
func (c *Controller) report(ctx context.Context, r *http.Request, res Result, extra ...zap.Field) Result {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("flow"),
		logger.Op("Attempt"),
		logger.Outcome(string(res.Outcome)),
	)

	switch {
	case res.Outcome == OutcomeNoCode:
		return res
	case res.Outcome == OutcomeAuthenticated:
		log.Debug("code ignored for authenticated caller")
	case res.Outcome.Failed():
		fields := append([]zap.Field{logger.State(res.FailedAt.String()), logger.Err(res.Err)}, extra...)
		if res.Outcome == OutcomeRateLimited {
			fields = append(fields, logger.ClientIP(c.clientIP(r)))
		}
		log.Warn("login aborted", fields...)
	default:
		log.Info("login completed",
			logger.State(res.State.String()),
			logger.UserID(res.User.ID),
			logger.Username(res.User.Username))
	}
	metrics.LoginAttempts.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

// Middleware corre el flujo antes de next. Si redirigió, la respuesta
// termina; en cualquier otro caso next corre, con la sesión en el contexto
// cuando el login acaba de establecerla.
func (c *Controller) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := c.Attempt(w, r)
		switch res.Outcome {
		case OutcomeRedirected:
			return
		case OutcomeSuccess:
			r = r.WithContext(session.WithSession(r.Context(), res.Session))
		}
		next.ServeHTTP(w, r)
	})
}
