package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libracatalog/internal/catalog"
	"libracatalog/internal/config"
	"libracatalog/pkg/eventstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadEnv()
	require.NoError(t, err)
	cfg.HTTP.RateLimit = 0.001
	cfg.HTTP.RateBurst = 3
	cfg.HTTP.RequestTimeout = time.Second
	return cfg
}

func TestRouter(t *testing.T) {
	h := newRouter(testConfig(t), catalog.NewService(eventstore.NewMemoryStore(), nil))

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "192.0.2.1:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get("/categories/resolve?label=horror")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Horror"`, rec.Body.String())

	rec = get("/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":`)
}
