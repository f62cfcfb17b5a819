package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/loginbridge/internal/cache"
	"github.com/dropDatabas3/loginbridge/internal/domain/repository"
	"github.com/dropDatabas3/loginbridge/internal/store/adapters/memory"
)

// recCache registra las keys escritas para verificar rollbacks.
type recCache struct {
	cache.Client
	mu      sync.Mutex
	setKeys []string
	failSet bool
}

func (c *recCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.failSet {
		return errors.New("cache down")
	}
	c.mu.Lock()
	c.setKeys = append(c.setKeys, key)
	c.mu.Unlock()
	return c.Client.Set(ctx, key, value, ttl)
}

func (c *recCache) live(t *testing.T) int {
	t.Helper()
	n := 0
	for _, k := range c.setKeys {
		if _, err := c.Client.Get(context.Background(), k); err == nil {
			n++
		}
	}
	return n
}

type failingTouch struct{ repository.UserRepository }

func (failingTouch) TouchLogin(context.Context, string, time.Time) error {
	return errors.New("disk full")
}

func setup(t *testing.T) (*memory.Connection, *recCache) {
	t.Helper()
	conn := memory.New()
	_, err := conn.Users().Create(context.Background(), repository.CreateUserInput{Username: "alice"})
	require.NoError(t, err)
	return conn, &recCache{Client: cache.NewMemory("")}
}

func TestLogin_ImmediatelyReadable(t *testing.T) {
	conn, c := setup(t)
	e := NewEstablisher(Deps{Cache: c, Users: conn.Users()})
	ctx := context.Background()

	s, err := e.Login(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.NotEmpty(t, s.ID)

	// la key del cache nunca es el id crudo
	require.Len(t, c.setKeys, 1)
	assert.NotContains(t, c.setKeys[0], s.ID)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(e.Cookie(s))
	got, ok := e.FromRequest(ctx, req)
	require.True(t, ok)
	assert.Equal(t, s.UserID, got.UserID)

	u, err := conn.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)
}

func TestLogin_UserVanished(t *testing.T) {
	conn, c := setup(t)
	u, _ := conn.Users().FindByUsername(context.Background(), "alice")
	conn.UserStore().Delete(u.ID)

	_, err := NewEstablisher(Deps{Cache: c, Users: conn.Users()}).Login(context.Background(), "alice")
	require.ErrorIs(t, err, ErrSession)
	assert.Empty(t, c.setKeys)
}

func TestLogin_CacheRejects(t *testing.T) {
	conn, c := setup(t)
	c.failSet = true

	_, err := NewEstablisher(Deps{Cache: c, Users: conn.Users()}).Login(context.Background(), "alice")
	require.ErrorIs(t, err, ErrSession)
}

func TestLogin_RollbackWhenRecordFails(t *testing.T) {
	conn, c := setup(t)
	e := NewEstablisher(Deps{Cache: c, Users: failingTouch{conn.Users()}})

	_, err := e.Login(context.Background(), "alice")
	require.ErrorIs(t, err, ErrSession)
	require.Len(t, c.setKeys, 1)
	assert.Equal(t, 0, c.live(t), "no partial session may survive")
}

func TestFromRequest_Expired(t *testing.T) {
	conn, c := setup(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := NewEstablisher(Deps{Cache: c, Users: conn.Users(), Config: Config{TTL: time.Hour}, Now: func() time.Time { return now }})

	s, err := e.Login(context.Background(), "alice")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: s.ID})
	_, ok := e.FromRequest(context.Background(), req)
	assert.False(t, ok)
}

func TestFromRequest_UnknownOrMissingCookie(t *testing.T) {
	conn, c := setup(t)
	e := NewEstablisher(Deps{Cache: c, Users: conn.Users()})

	_, ok := e.FromRequest(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "forged"})
	_, ok = e.FromRequest(context.Background(), req)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	conn, c := setup(t)
	e := NewEstablisher(Deps{Cache: c, Users: conn.Users()})
	ctx := context.Background()

	s, err := e.Login(ctx, "alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(e.Cookie(s))

	require.NoError(t, e.Logout(ctx, req))
	_, ok := e.FromRequest(ctx, req)
	assert.False(t, ok)

	// sin cookie no es error
	require.NoError(t, e.Logout(ctx, httptest.NewRequest(http.MethodPost, "/logout", nil)))
}

func TestCookieAttributes(t *testing.T) {
	e := NewEstablisher(Deps{Config: Config{CookieName: "sid", SameSite: "Strict", Secure: true, CookieDomain: "app.example"}})
	ck := e.Cookie(&Session{ID: "x", ExpiresAt: time.Now().Add(time.Hour)})
	assert.Equal(t, "sid", ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, "/", ck.Path)

	clr := e.ClearCookie()
	assert.Equal(t, -1, clr.MaxAge)
	assert.Empty(t, clr.Value)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	ctx := WithSession(context.Background(), &Session{Username: "alice"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", s.Username)
}
