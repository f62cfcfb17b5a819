// Package upstream sirve todo lo que no es propio del bridge: lo proxea a la
// app protegida con la identidad en X-Forwarded-User, o responde un estado
// mínimo cuando no hay upstream.
package upstream

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	httperrors "github.com/dropDatabas3/loginbridge/internal/http/errors"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/session"
)

const (
	HeaderUser   = "X-Forwarded-User"
	HeaderUserID = "X-Forwarded-User-Id"
)

// NewProxy crea el reverse proxy hacia target. Los headers de identidad que
// mande el cliente se descartan siempre.
func NewProxy(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("upstream: parse %q: %w", target, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream: %q must be an absolute url", target)
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
			pr.Out.Header.Del(HeaderUser)
			pr.Out.Header.Del(HeaderUserID)
			if s, ok := session.FromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(HeaderUser, s.Username)
				pr.Out.Header.Set(HeaderUserID, s.UserID)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.From(r.Context()).Warn("upstream unavailable",
				logger.Layer("controller"), logger.Component("upstream"), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrBadGateway.WithCause(err))
		},
	}
	return rp, nil
}

type statusResponse struct {
	Service       string `json:"service"`
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// Status responde cuando no hay upstream: "/" devuelve el estado, el resto 404.
func Status(service string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		resp := statusResponse{Service: service}
		if s, ok := session.FromContext(r.Context()); ok {
			resp.Authenticated = true
			resp.Username = s.Username
		}
		httperrors.WriteJSON(w, http.StatusOK, resp)
	})
}
