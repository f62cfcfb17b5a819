package settings

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
)

// Store lee y escribe settings sobre el repositorio del adapter.
type Store struct {
	repo repository.SettingsRepository
}

func NewStore(repo repository.SettingsRepository) *Store {
	return &Store{repo: repo}
}

// Load lee todas las claves y arma el snapshot de este request.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	m, err := s.repo.All(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("settings: load: %w", err)
	}
	return FromMap(m), nil
}

// Raw retorna el KV tal cual está guardado.
func (s *Store) Raw(ctx context.Context) (map[string]string, error) {
	return s.repo.All(ctx)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

// Set rechaza claves que el flujo no conoce.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("%w: unknown setting %q", repository.ErrInvalidInput, key)
	}
	return s.repo.Set(ctx, key, value)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// SeedDefaults inserta los valores de config que todavía no existen.
// Nunca pisa lo que un administrador ya cambió. Retorna cuántos insertó.
func (s *Store) SeedDefaults(ctx context.Context, defaults map[string]string) (int, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("settings"), logger.Op("SeedDefaults"))

	n := 0
	for _, k := range Keys() {
		v, ok := defaults[k]
		if !ok || v == "" {
			continue
		}
		inserted, err := s.repo.SetIfAbsent(ctx, k, v)
		if err != nil {
			return n, fmt.Errorf("settings: seed %s: %w", k, err)
		}
		if inserted {
			n++
			log.Debug("seeded", logger.Key(k))
		}
	}
	for k := range defaults {
		if !IsKnown(k) {
			log.Warn("ignoring unknown seed key", logger.Key(k))
		}
	}
	return n, nil
}
