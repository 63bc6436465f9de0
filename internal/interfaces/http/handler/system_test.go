package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("backoffice", "1.2.3", nil)
	c, w := newTestContext()

	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "backoffice", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.Equal(t, runtime.Version(), resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantHealth string
		wantDB     string
	}{
		{"no database", nil, http.StatusOK, "healthy", ""},
		{"database reachable", pingerFunc(func(context.Context) error { return nil }), http.StatusOK, "healthy", "ok"},
		{"database down", pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			http.StatusServiceUnavailable, "unhealthy", "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("backoffice", "dev", tt.db)
			c, w := newTestContext()

			h.Health(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantHealth, resp.Status)
			assert.Equal(t, tt.wantDB, resp.Checks["database"])
			assert.NotEmpty(t, resp.Timestamp)
		})
	}
}

func TestSystemHandler_HealthPingHasDeadline(t *testing.T) {
	var hadDeadline bool
	h := NewSystemHandler("backoffice", "dev", pingerFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))
	c, _ := newTestContext()

	h.Health(c)

	assert.True(t, hadDeadline)
}

func TestSystemHandler_NoRoute(t *testing.T) {
	engine := gin.New()
	engine.NoRoute(NewSystemHandler("backoffice", "dev", nil).NoRoute)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}
