package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP devuelve la función que identifica al cliente para rate limit y
// logs. Con trustProxy usa el primer X-Forwarded-For / X-Real-IP; sin él
// solo RemoteAddr, porque esos headers los controla el cliente.
func ClientIP(trustProxy bool) func(*http.Request) string {
	return func(r *http.Request) string {
		if trustProxy {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
			if xr := strings.TrimSpace(r.Header.Get("X-Real-IP")); xr != "" {
				return xr
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return r.RemoteAddr
		}
		return host
	}
}
