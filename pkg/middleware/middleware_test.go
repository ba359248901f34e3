package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/context"
	apperrors "github.com/Ramsey-B/clover/pkg/errors"
)

func nopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newEcho(handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = Error(nopLogger())
	e.Use(Context("en"))
	e.Use(Logger(nopLogger()))
	e.GET("/", handler)
	return e
}

func TestContext_SetsRequestIDAndLocale(t *testing.T) {
	var requestID, locale string
	e := newEcho(func(c echo.Context) error {
		requestID = context.GetRequestID(c.Request().Context())
		locale = context.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "fr-FR,fr;q=0.9", locale)
}

func TestContext_QueryLocaleWinsAndDefaults(t *testing.T) {
	var locale string
	e := newEcho(func(c echo.Context) error {
		locale = context.GetLocale(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/?locale=fr", nil)
	req.Header.Set("Accept-Language", "en")
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "fr", locale)
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "en", locale)
}

func TestError_RendersHTTPErrors(t *testing.T) {
	e := newEcho(func(c echo.Context) error {
		return httperror.NewHTTPError(http.StatusBadRequest, "id_product must be a positive integer")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "id_product must be a positive integer")
	assert.NotEmpty(t, body.RequestID)
}

func TestError_HidesStorageDetail(t *testing.T) {
	e := newEcho(func(c echo.Context) error {
		return apperrors.NewStorageError("relationship lookup", errors.New("pq: password authentication failed"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "relationship lookup failed")
}

func TestError_EchoErrors(t *testing.T) {
	e := newEcho(func(c echo.Context) error { return nil })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
