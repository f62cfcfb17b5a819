package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/loginbridge/internal/config"
	"github.com/dropDatabas3/loginbridge/internal/idtoken"
	"github.com/dropDatabas3/loginbridge/internal/settings"
)

func tokenServer(t *testing.T, username string) *httptest.Server {
	t.Helper()
	raw, err := idtoken.EncodeUnsigned(idtoken.Claims{"sub": "abc", "preferred_username": username})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "at",
			"token_type":   "Bearer",
			"id_token":     raw,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func build(t *testing.T, seed map[string]string) *App {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Settings.Seed = seed

	app, err := Build(context.Background(), cfg, Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestBuild_LoginThenMe(t *testing.T) {
	idp := tokenServer(t, "alice")
	app := build(t, map[string]string{
		settings.KeyUsernameAttribute: "preferred_username",
		settings.KeyCreateNewUser:     "true",
		settings.KeyTokenEndpoint:     idp.URL,
		settings.KeyClientID:          "client-1",
		settings.KeyHomepage:          "/welcome",
	})

	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything?code=abc", nil))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/welcome", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w = httptest.NewRecorder()
	app.Handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, true, me["authenticated"])
	assert.Equal(t, "alice", me["username"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestBuild_LogoutRequiresPost(t *testing.T) {
	idp := tokenServer(t, "alice")
	app := build(t, map[string]string{
		settings.KeyUsernameAttribute: "preferred_username",
		settings.KeyCreateNewUser:     "true",
		settings.KeyTokenEndpoint:     idp.URL,
		settings.KeyClientID:          "client-1",
		settings.KeyHomepage:          "/welcome",
	})

	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?code=abc", nil))
	require.Equal(t, http.StatusFound, w.Code)
	cookies := w.Result().Cookies()

	send := func(method, path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			r.AddCookie(c)
		}
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, r)
		return w
	}
	authenticated := func() bool {
		var me map[string]any
		require.NoError(t, json.Unmarshal(send(http.MethodGet, "/me").Body.Bytes(), &me))
		return me["authenticated"] == true
	}

	assert.Equal(t, http.StatusMethodNotAllowed, send(http.MethodGet, "/logout").Code)
	assert.True(t, authenticated(), "GET /logout must not end the session")

	w = send(http.MethodPost, "/logout")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/welcome", w.Header().Get("Location"))
	assert.False(t, authenticated())
}

func TestBuild_FailedLoginFallsThrough(t *testing.T) {
	app := build(t, map[string]string{settings.KeyUsernameAttribute: "preferred_username"})

	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?code=abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"service":"loginbridge","authenticated":false}`, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestBuild_OperationalEndpoints(t *testing.T) {
	app := build(t, nil)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	app.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

func TestBuild_SeedDoesNotOverwrite(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Settings.Seed = map[string]string{settings.KeyHomepage: "/seeded"}

	app, err := Build(context.Background(), cfg, Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Settings.Set(context.Background(), settings.KeyHomepage, "/operator"))
	n, err := app.Settings.SeedDefaults(context.Background(), cfg.Settings.Seed)
	require.NoError(t, err)
	assert.Zero(t, n)

	v, err := app.Settings.Get(context.Background(), settings.KeyHomepage)
	require.NoError(t, err)
	assert.Equal(t, "/operator", v)
}
