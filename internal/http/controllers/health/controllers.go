// Package health contiene /healthz y /readyz.
package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/loginbridge/internal/http/errors"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

// Pinger es cualquier dependencia que se pueda chequear.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	// Components por nombre ("store", "cache").
	Components map[string]Pinger
	Version    string
	Timeout    time.Duration
}

type Controller struct {
	components map[string]Pinger
	version    string
	timeout    time.Duration
}

func NewController(d Deps) *Controller {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &Controller{components: d.Components, version: d.Version, timeout: d.Timeout}
}

type response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// Healthz: liveness, nunca toca dependencias.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	httperrors.WriteJSON(w, http.StatusOK, response{Status: "ok", Version: c.version})
}

// Readyz: 200 si todos los componentes responden, 503 si alguno falla.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := response{Status: "ready", Version: c.version, Components: map[string]string{}}
	status := http.StatusOK
	for name, p := range c.components {
		if err := p.Ping(ctx); err != nil {
			log.Warn("component not ready", logger.Component(name), logger.Err(err))
			resp.Components[name] = "unavailable"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "ok"
	}
	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	httperrors.WriteJSON(w, status, resp)
}
