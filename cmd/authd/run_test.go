package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authcore/pkg/auth"
	"github.com/dmitrymomot/authcore/pkg/logger"
	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	var cfg Config
	require.NoError(t, env.Parse(&cfg))
	cfg.Users.Driver = userstore.DriverMemory
	cfg.Auth.BcryptCost = 4
	return cfg
}

func newTestApp(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	a, err := build(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(a.router)
	t.Cleanup(func() {
		srv.Close()
		_ = a.close()
	})
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestBuild_SessionStrategy(t *testing.T) {
	t.Parallel()
	srv := newTestApp(t, testConfig(t))

	resp := post(t, srv, "/auth/register", `{"username":"alice","password":"pw","email":""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, srv, "/auth/login", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Len(t, login.Token, 43)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer me.Body.Close()
	body, err := io.ReadAll(me.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"username":"alice"`)

	live, err := srv.Client().Get(srv.URL + "/health/live")
	require.NoError(t, err)
	_ = live.Body.Close()
	assert.Equal(t, http.StatusOK, live.StatusCode)

	metricsResp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	text, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `authcore_auth_attempts_total{result="success"} 1`)
	assert.Contains(t, string(text), `authcore_http_requests_total`)
}

func TestBuild_TokenStrategy(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Auth.Strategy = auth.StrategyToken
	cfg.Auth.Secret = "0123456789abcdef0123456789abcdef"
	srv := newTestApp(t, cfg)

	require.Equal(t, http.StatusOK, post(t, srv, "/auth/register", `{"username":"bob","password":"pw","email":""}`).StatusCode)
	resp := post(t, srv, "/auth/login", `{"username":"bob","password":"pw"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	assert.Equal(t, 2, strings.Count(login.Token, "."))
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	t.Run("token strategy without secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Auth.Strategy = auth.StrategyToken
		_, err := build(context.Background(), cfg, logger.Discard())
		assert.ErrorIs(t, err, auth.ErrMissingSecret)
	})

	t.Run("unknown user store", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Users.Driver = "mongo"
		_, err := build(context.Background(), cfg, logger.Discard())
		assert.ErrorIs(t, err, userstore.ErrUnknownDriver)
	})

	t.Run("bad prune schedule", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Sweeper.Schedule = "every now and then"
		_, err := build(context.Background(), cfg, logger.Discard())
		assert.Error(t, err)
	})
}

func TestBuild_ReadinessCoversRedis(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Sessions.Store = session.StoreRedis
	cfg.Sessions.Redis.ConnectionURL = "redis://" + mr.Addr() + "/0"
	cfg.Sessions.Redis.RetryAttempts = 1
	srv := newTestApp(t, cfg)

	ready, err := srv.Client().Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	body, err := io.ReadAll(ready.Body)
	_ = ready.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ready.StatusCode)
	assert.Contains(t, string(body), `"sessions":"ok"`)

	mr.Close()
	notReady, err := srv.Client().Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	_ = notReady.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, notReady.StatusCode)
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()
	_, ok := requestIDExtractor(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	attr, ok := requestIDExtractor(ctx)
	require.True(t, ok)
	assert.Equal(t, "req-1", attr.Value.String())
}
