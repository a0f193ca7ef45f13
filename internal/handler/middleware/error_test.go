//go:build unit

package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-checkout/internal/handler/httperr"
	"storefront-checkout/internal/handler/middleware"
	"storefront-checkout/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func newErrorRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test-1234")
		c.Next()
	})
	router.Use(middleware.ErrorHandler())
	router.GET("/boom", handler)
	return router
}

func TestErrorHandler(t *testing.T) {
	t.Run("server errors are logged with request id and stack", func(t *testing.T) {
		logs := captureLogs(t)
		router := newErrorRouter(func(c *gin.Context) {
			httperr.AbortWithError(c, http.StatusInternalServerError,
				errs.New("pool exhausted"), "Internal server error", nil)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Internal server error", resp.Error)

		var entry struct {
			Msg       string   `json:"msg"`
			RequestID string   `json:"request_id"`
			Path      string   `json:"path"`
			Stack     []string `json:"stack"`
		}
		require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
		assert.Equal(t, "request failed", entry.Msg)
		assert.Equal(t, "req-test-1234", entry.RequestID)
		assert.Equal(t, "/boom", entry.Path)
		require.NotEmpty(t, entry.Stack)
		assert.Equal(t, "pool exhausted", entry.Stack[0])
	})

	t.Run("client errors are rendered without a server log line", func(t *testing.T) {
		logs := captureLogs(t)
		router := newErrorRouter(func(c *gin.Context) {
			httperr.AbortWithError(c, http.StatusNotFound,
				errs.New("no such order"), "Order not found", nil)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, logs.Bytes())
	})

	t.Run("recorded public error is rendered when nothing was written", func(t *testing.T) {
		captureLogs(t)
		router := newErrorRouter(func(c *gin.Context) {
			resp := httperr.Response{Status: http.StatusConflict, Error: "Already cancelled"}
			_ = c.Error(errs.New("state race")).SetType(gin.ErrorTypePublic).SetMeta(resp)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Already cancelled", resp.Error)
	})
}
