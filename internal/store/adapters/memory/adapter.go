// Package memory implementa un adapter en memoria (dev y tests).
// Los datos viven mientras viva el proceso.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/store"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.AdapterConnection, error) {
	return New(), nil
}

// Connection es una conexión en memoria. Exportada para que los tests
// puedan construirla sin pasar por el registry.
type Connection struct {
	users    *UserRepo
	settings *SettingsRepo
}

// New crea una conexión vacía.
func New() *Connection {
	return &Connection{
		users:    &UserRepo{byID: map[string]*repository.User{}, byName: map[string]string{}},
		settings: &SettingsRepo{kv: map[string]string{}},
	}
}

func (c *Connection) Name() string                   { return "memory" }
func (c *Connection) Ping(ctx context.Context) error { return nil }
func (c *Connection) Close() error                   { return nil }

func (c *Connection) Users() repository.UserRepository        { return c.users }
func (c *Connection) Settings() repository.SettingsRepository { return c.settings }

// UserStore expone el repo concreto (Len/Delete) para tests.
func (c *Connection) UserStore() *UserRepo { return c.users }

// UserRepo implementa repository.UserRepository.
type UserRepo struct {
	mu     sync.RWMutex
	byID   map[string]*repository.User
	byName map[string]string // username -> id
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Username == "" {
		return nil, repository.ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[in.Username]; exists {
		return nil, repository.ErrConflict
	}
	u := &repository.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: in.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byID[u.ID] = u
	r.byName[u.Username] = u.ID
	return cloneUser(u), nil
}

func (r *UserRepo) TouchLogin(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t := at.UTC()
	u.LastLoginAt = &t
	return nil
}

// Delete borra un usuario. Solo lo usan los tests para simular carreras.
func (r *UserRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byName, u.Username)
		delete(r.byID, id)
	}
}

// Len retorna la cantidad de usuarios.
func (r *UserRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func cloneUser(u *repository.User) *repository.User {
	cp := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}

// SettingsRepo implementa repository.SettingsRepository.
type SettingsRepo struct {
	mu sync.RWMutex
	kv map[string]string
}

func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.kv[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (r *SettingsRepo) All(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.kv))
	for k, v := range r.kv {
		out[k] = v
	}
	return out, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kv[key] = value
	return nil
}

func (r *SettingsRepo) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kv[key]; ok {
		return false, nil
	}
	r.kv[key] = value
	return true, nil
}

func (r *SettingsRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.kv, key)
	return nil
}

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
)
