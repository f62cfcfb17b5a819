package repository

import (
	"context"
	"time"
)

// User es el registro local de un usuario autenticado vía provider.
type User struct {
	ID           string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string // argon2id de una credencial aleatoria; nadie la conoce
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// CreateUserInput contiene los datos para provisionar un usuario.
type CreateUserInput struct {
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
}

// UserRepository es el directorio de usuarios.
// La unicidad de Username la garantiza el directorio, no quien llama.
type UserRepository interface {
	// FindByUsername retorna ErrNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// GetByID retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// Create inserta el usuario. Un username existente retorna ErrConflict,
	// nunca sobrescribe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// TouchLogin registra el último login. ErrNotFound si el usuario ya no existe.
	TouchLogin(ctx context.Context, id string, at time.Time) error
}
