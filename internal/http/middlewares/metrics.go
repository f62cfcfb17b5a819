package middlewares

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/loginbridge/internal/metrics"
)

// WithMetrics instrumenta requests (contador, latencia, inflight). La label
// path es el patrón de chi cuando hay ruta, si no el path normalizado.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			inflight := metrics.NormalizePath(r.URL.Path)

			metrics.HTTPInflight.WithLabelValues(method, inflight).Inc()
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				metrics.HTTPInflight.WithLabelValues(method, inflight).Dec()
				path := inflight
				if rc := chi.RouteContext(r.Context()); rc != nil {
					if p := rc.RoutePattern(); p != "" && p != "/*" {
						path = p
					}
				}
				metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
				metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
