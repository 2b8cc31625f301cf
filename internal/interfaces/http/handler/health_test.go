package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type aiStatus bool

func (s aiStatus) AIEnabled() bool { return bool(s) }

func ready(t *testing.T, h *HealthHandler) (int, readinessResponse) {
	t.Helper()
	r := gin.New()
	r.GET("/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealthHandler_Ready(t *testing.T) {
	ok := checkerFunc(func(context.Context) error { return nil })
	down := checkerFunc(func(context.Context) error { return errors.New("connection refused") })

	t.Run("postgres up, redis disabled, llm off", func(t *testing.T) {
		code, resp := ready(t, &HealthHandler{pg: ok, ai: aiStatus(false)})

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", resp.Checks["postgres"].Status)
		assert.Equal(t, "disabled", resp.Checks["redis"].Status)
		assert.Equal(t, "disabled", resp.Checks["llm"].Status)
	})

	t.Run("redis failure is degraded only", func(t *testing.T) {
		code, resp := ready(t, &HealthHandler{pg: ok, redis: down, ai: aiStatus(true)})

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "degraded", resp.Checks["redis"].Status)
		assert.Equal(t, "enabled", resp.Checks["llm"].Status)
	})

	t.Run("postgres failure", func(t *testing.T) {
		code, resp := ready(t, &HealthHandler{pg: down})

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["postgres"].Error)
	})

	t.Run("postgres missing", func(t *testing.T) {
		code, _ := ready(t, NewHealthHandler(nil, nil, nil))
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})
}

func TestHealthHandler_Live(t *testing.T) {
	r := gin.New()
	h := NewHealthHandler(nil, nil, nil)
	r.GET("/live", h.Live)
	r.GET("/health", h.Health)

	for _, path := range []string{"/live", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	}
}
