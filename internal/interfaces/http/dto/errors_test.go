package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := map[string]string{
		"NOT_FOUND":             ErrCodeNotFound,
		"ALREADY_EXISTS":        ErrCodeAlreadyExists,
		"UNAUTHORIZED":          ErrCodeUnauthorized,
		"FORBIDDEN":             ErrCodeForbidden,
		"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
		"INVALID_REFRESH_TOKEN": ErrCodeTokenInvalid,
		"INVALID_PASSWORD":      ErrCodeInvalidPassword,
		"TOO_MANY_ATTEMPTS":     ErrCodeTooManyAttempts,
		"INTERNAL_ERROR":        ErrCodeInternal,

		// INVALID_* without an entry of its own
		"INVALID_EMAIL":      ErrCodeInvalidInput,
		"INVALID_ROLE_NAME":  ErrCodeInvalidInput,
		"INVALID_PERMISSION": ErrCodeInvalidInput,

		// already normalized or unknown
		ErrCodeForbidden: ErrCodeForbidden,
		"SOMETHING_ELSE":  "SOMETHING_ELSE",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeErrorCode(in))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidPassword, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeTooManyAttempts, http.StatusTooManyRequests},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestEveryMappedDomainCodeHasAStatus(t *testing.T) {
	for domainCode, code := range domainCodes {
		assert.True(t, strings.HasPrefix(code, "ERR_"), domainCode)
		_, ok := httpStatus[code]
		assert.True(t, ok, "%s maps to %s which has no status", domainCode, code)
	}
}

func TestFail(t *testing.T) {
	before := time.Now()
	resp := Fail("NOT_FOUND", "Role not found", "req-1")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Role not found", resp.Error.Message)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.False(t, resp.Error.Timestamp.Before(before))
}

func TestInvalid(t *testing.T) {
	resp := Invalid("Request validation failed", "", []ValidationDetail{
		{Field: "email", Message: "Invalid email format", Tag: "email"},
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "email", resp.Error.Details[0].Field)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"success":false`)
	assert.NotContains(t, string(raw), `"request_id"`)
	assert.NotContains(t, string(raw), `"data"`)
}

func TestOK(t *testing.T) {
	resp := OK(map[string]string{"name": "Viewer"})

	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestPage(t *testing.T) {
	tests := []struct {
		total     int64
		pageSize  int
		wantSize  int
		wantPages int
	}{
		{0, 10, 10, 0},
		{9, 10, 10, 1},
		{10, 10, 10, 1},
		{11, 10, 10, 2},
		{100, 0, defaultPageSize, 5},
		{41, -3, defaultPageSize, 3},
	}
	for _, tt := range tests {
		resp := Page([]string{}, tt.total, 2, tt.pageSize)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.total, resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, tt.wantSize, resp.Meta.PageSize, "total=%d size=%d", tt.total, tt.pageSize)
		assert.Equal(t, tt.wantPages, resp.Meta.TotalPages, "total=%d size=%d", tt.total, tt.pageSize)
	}
}
