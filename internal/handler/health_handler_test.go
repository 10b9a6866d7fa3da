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

func TestHealthHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(
		ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return nil }},
	)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ready", nil)

	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandlerReadyReportsFailedDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(
		ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
	)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/ready", nil)

	handler.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "redis", body["failed"])
}

func TestHealthHandlerLiveIgnoresDependencies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(
		ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return errors.New("down") }},
	)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)

	handler.Live(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
