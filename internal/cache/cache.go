// Package cache provee el key-value con TTL donde viven las sesiones.
//
// Soporta:
//   - memory (in-process, go-cache; un solo nodo)
//   - redis (compartido entre réplicas)
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. ttl 0 = no expira.
	// Cuando retorna nil el valor ya es visible para el siguiente Get.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisConfig configura la conexión a redis.
type RedisConfig struct {
	Addr     string // host:port
	Password string
	DB       int
}

// ErrNotFound indica que la key no existe.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
