package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func findHTTPLog(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1, "HTTP Request log should exist")
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-123")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test?page=2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	entry := findHTTPLog(t, recorded)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/test", fields["path"])
	assert.Equal(t, "page=2", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"client error", http.StatusForbidden, zapcore.WarnLevel},
		{"server error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/x", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.level, findHTTPLog(t, recorded).Level)
		})
	}
}

func TestGinMiddleware_LoggerReachableFromRequestContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-ctx")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/svc", func(c *gin.Context) {
		For(c.Request.Context(), zap.New(core)).Info("from service")
		GetGinLogger(c).Info("from handler")
		assert.Equal(t, "req-ctx", GetRequestID(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/svc", nil))

	svc := recorded.FilterMessage("from service").All()
	require.Len(t, svc, 1)
	assert.Equal(t, "req-ctx", svc[0].ContextMap()["request_id"])

	handler := recorded.FilterMessage("from handler").All()
	require.Len(t, handler, 1)
	assert.Equal(t, "req-ctx", handler[0].ContextMap()["request_id"])
	assert.Equal(t, "/svc", handler[0].ContextMap()["path"])
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "ERR_INTERNAL", errObj["code"])
	assert.NotContains(t, w.Body.String(), "boom")

	logged := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, logged, 1)
	assert.Equal(t, "boom", logged[0].ContextMap()["panic"])
}

func TestRecovery_UsesRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(GinRequestIDKey, "req-9")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)), Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"request_id":"req-9"`)
	logged := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, logged, 1)
	assert.Equal(t, "/panic", logged[0].ContextMap()["path"])
	assert.Equal(t, zapcore.ErrorLevel, findHTTPLog(t, recorded).Level)
}

func TestStatusLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, statusLevel(http.StatusNoContent))
	assert.Equal(t, zapcore.InfoLevel, statusLevel(http.StatusFound))
	assert.Equal(t, zapcore.WarnLevel, statusLevel(http.StatusTooManyRequests))
	assert.Equal(t, zapcore.ErrorLevel, statusLevel(http.StatusServiceUnavailable))
}

func TestGetGinLogger(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c), "falls back to a no-op logger")

	l := zap.NewExample()
	c.Set(GinLoggerKey, l)
	assert.Same(t, l, GetGinLogger(c))
}
