package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/loginbridge/internal/claims"
	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/security/password"
	"github.com/dropDatabas3/loginbridge/internal/store/adapters/memory"
)

var cheap = &password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16}

func TestResolve_ExistingUnchanged(t *testing.T) {
	ctx := context.Background()
	conn := memory.New()
	existing, err := conn.Users().Create(ctx, repository.CreateUserInput{Username: "alice", Email: "old@example.com"})
	require.NoError(t, err)

	r := NewResolver(Deps{Users: conn.Users(), Params: cheap})
	u, err := r.Resolve(ctx, "alice", claims.Profile{Email: "new@example.com"}, true)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, u.ID)
	assert.Equal(t, "old@example.com", u.Email)
	assert.Equal(t, 1, conn.UserStore().Len())
}

func TestResolve_MissingCreationDisabled(t *testing.T) {
	conn := memory.New()
	r := NewResolver(Deps{Users: conn.Users(), Params: cheap})

	_, err := r.Resolve(context.Background(), "alice", claims.Profile{}, false)
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 0, conn.UserStore().Len())
}

func TestResolve_CreatesWithRandomCredential(t *testing.T) {
	conn := memory.New()
	r := NewResolver(Deps{Users: conn.Users(), Params: cheap})

	u, err := r.Resolve(context.Background(), "alice", claims.Profile{Email: "a@example.com", DisplayName: "Alice"}, true)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Contains(t, u.PasswordHash, "$argon2id$")
	assert.False(t, password.Verify("", u.PasswordHash))
	assert.Equal(t, 1, conn.UserStore().Len())
}

// racyRepo simula que otro request creó el usuario entre el lookup y el insert.
type racyRepo struct {
	repository.UserRepository
}

func (racyRepo) FindByUsername(context.Context, string) (*repository.User, error) {
	return nil, repository.ErrNotFound
}

func (racyRepo) Create(context.Context, repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrConflict
}

func TestResolve_DuplicateRaceIsCreationError(t *testing.T) {
	r := NewResolver(Deps{Users: racyRepo{}, Params: cheap})
	_, err := r.Resolve(context.Background(), "alice", claims.Profile{}, true)
	require.ErrorIs(t, err, ErrUserCreation)
	assert.True(t, errors.Is(err, repository.ErrConflict))
}

type brokenRepo struct{ repository.UserRepository }

func (brokenRepo) FindByUsername(context.Context, string) (*repository.User, error) {
	return nil, errors.New("connection refused")
}

func TestResolve_LookupFailure(t *testing.T) {
	r := NewResolver(Deps{Users: brokenRepo{}, Params: cheap})
	_, err := r.Resolve(context.Background(), "alice", claims.Profile{}, true)
	require.ErrorIs(t, err, ErrUserNotFound)
}
