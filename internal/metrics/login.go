package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del flujo de login. Viven en un paquete propio para que flow,
// provider y session puedan usarlas sin importarse entre sí.

var (
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loginbridge_login_attempts_total",
		Help: "Intentos de login por outcome",
	}, []string{"outcome"})

	ExchangeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loginbridge_token_exchange_duration_seconds",
		Help:    "Latencia del POST al token endpoint",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 11),
	})

	UsersProvisioned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loginbridge_users_provisioned_total",
		Help: "Usuarios locales creados a partir de claims",
	})

	SessionsEstablished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loginbridge_sessions_established_total",
		Help: "Sesiones creadas",
	})
)

// Register registra las métricas en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{LoginAttempts, ExchangeDuration, UsersProvisioned, SessionsEstablished} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}
