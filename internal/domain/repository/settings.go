package repository

import "context"

// SettingsRepository es el KV de configuración runtime.
// Un administrador puede cambiarlo en cualquier momento; nadie debe cachearlo.
type SettingsRepository interface {
	// Get retorna ErrNotFound si la clave no existe.
	Get(ctx context.Context, key string) (string, error)

	// All retorna todas las claves.
	All(ctx context.Context) (map[string]string, error)

	Set(ctx context.Context, key, value string) error

	// SetIfAbsent inserta solo si la clave no existe. Retorna true si insertó.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	Delete(ctx context.Context, key string) error
}
