// Package store provee el registry de adaptadores de almacenamiento.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
)

// Adapter crea conexiones a un backend de almacenamiento.
type Adapter interface {
	// Name retorna el nombre del adapter ("memory", "postgres", "sqlite").
	Name() string

	Connect(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error)
}

// AdapterConnection es una conexión activa con acceso a los repositorios.
type AdapterConnection interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	Users() repository.UserRepository
	Settings() repository.SettingsRepository
}

// MigratableConnection la implementan las conexiones SQL.
type MigratableConnection interface {
	// DB retorna el handle database/sql sobre el que corre el Migrator.
	DB() *sql.DB
}

// PoolStats es una foto del pool de conexiones.
type PoolStats struct {
	Acquired int
	Idle     int
	Total    int
}

// PoolStater la implementan las conexiones con pool (postgres, sqlite).
type PoolStater interface {
	PoolStats() PoolStats
}

// AdapterConfig configuración para conectar a un almacenamiento.
type AdapterConfig struct {
	// Name del adapter: "memory", "postgres", "sqlite"
	Name string

	// DSN connection string (postgres) o path del archivo (sqlite).
	DSN string

	MaxOpenConns int
	MaxIdleConns int
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("adapter: %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAdapter abre una conexión usando el adapter indicado en la config.
func OpenAdapter(ctx context.Context, cfg AdapterConfig) (AdapterConnection, error) {
	a, ok := GetAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("adapter: %q not registered (have %v)", cfg.Name, ListAdapters())
	}
	return a.Connect(ctx, cfg)
}
