package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(c *Checker, target string) *httptest.ResponseRecorder {
	e := echo.New()
	c.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	checker := NewChecker("1.2.3").
		AddCheck("database", func(context.Context) error { return nil })

	rec := serve(checker, "/api/v1/health")

	require.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "healthy", status.Checks["database"].Status)
}

func TestHealth_Unhealthy(t *testing.T) {
	checker := NewChecker("dev").
		AddCheck("database", func(context.Context) error { return nil }).
		AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

	rec := serve(checker, "/api/v1/health")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "connection refused", status.Checks["redis"].Message)
	assert.Equal(t, "healthy", status.Checks["database"].Status)
}

func TestLiveAndReady(t *testing.T) {
	checker := NewChecker("dev")

	assert.Equal(t, http.StatusOK, serve(checker, "/api/v1/health/live").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(checker, "/api/v1/health/ready").Code)

	checker.SetReady(true)
	assert.Equal(t, http.StatusOK, serve(checker, "/api/v1/health/ready").Code)
}
