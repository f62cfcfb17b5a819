// Package users resuelve el usuario local de un login: lo busca y, si está
// permitido, lo provisiona con una credencial aleatoria.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/loginbridge/internal/claims"
	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/metrics"
	"github.com/dropDatabas3/loginbridge/internal/observability/logger"
	"github.com/dropDatabas3/loginbridge/internal/security/password"
	tokens "github.com/dropDatabas3/loginbridge/internal/security/token"
)

var (
	ErrUserNotFound = errors.New("users: user not found")
	ErrUserCreation = errors.New("users: user creation failed")
)

type Deps struct {
	Users repository.UserRepository
	// Params del hash de la credencial aleatoria (default password.Default).
	Params *password.Params
}

type Resolver struct {
	users  repository.UserRepository
	params password.Params
}

func NewResolver(d Deps) *Resolver {
	p := password.Default
	if d.Params != nil {
		p = *d.Params
	}
	return &Resolver{users: d.Users, params: p}
}

// Resolve busca username. Si existe lo retorna sin tocarlo (no sincroniza
// perfil). Si no existe: ErrUserNotFound, o lo crea cuando allowCreate.
func (r *Resolver) Resolve(ctx context.Context, username string, profile claims.Profile, allowCreate bool) (*repository.User, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("users"), logger.Op("Resolve"))

	u, err := r.users.FindByUsername(ctx, username)
	if err == nil {
		return u, nil
	}
	if !repository.IsNotFound(err) {
		// sin directorio no hay login; se reporta como no encontrado
		log.Warn("directory lookup failed", logger.Username(username), logger.Err(err))
		return nil, fmt.Errorf("%w: lookup: %v", ErrUserNotFound, err)
	}
	if !allowCreate {
		return nil, fmt.Errorf("%w: %q and creation disabled", ErrUserNotFound, username)
	}

	// Nadie conoce esta credencial: la autenticación es del provider.
	secret, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("%w: credential: %v", ErrUserCreation, err)
	}
	hash, err := password.Hash(r.params, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", ErrUserCreation, err)
	}

	u, err = r.users.Create(ctx, repository.CreateUserInput{
		Username:     username,
		Email:        profile.Email,
		DisplayName:  profile.DisplayName,
		PasswordHash: hash,
	})
	if err != nil {
		// incluye la carrera de username duplicado (ErrConflict): nunca pisamos
		return nil, fmt.Errorf("%w: %w", ErrUserCreation, err)
	}

	metrics.UsersProvisioned.Inc()
	log.Info("user provisioned", logger.UserID(u.ID), logger.Username(u.Username))
	return u, nil
}
