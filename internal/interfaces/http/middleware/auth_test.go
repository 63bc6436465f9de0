package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errTestUnauthorized = shared.NewDomainError("UNAUTHORIZED", "Invalid or expired token")

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*identity.Principal, *auth.Claims, error) {
	args := m.Called(ctx, token)
	var p *identity.Principal
	if v := args.Get(0); v != nil {
		p = v.(*identity.Principal)
	}
	var claims *auth.Claims
	if v := args.Get(1); v != nil {
		claims = v.(*auth.Claims)
	}
	return p, claims, args.Error(2)
}

// principalFor builds the principal of a user holding a role with perms
func principalFor(t *testing.T, email, roleName string, perms ...string) *identity.Principal {
	t.Helper()
	user, err := identity.NewUser(email, "", "Secret123")
	require.NoError(t, err)
	if roleName == "" {
		return identity.NewPrincipal(user, nil)
	}
	role, err := identity.NewRole(roleName, "", perms)
	require.NoError(t, err)
	user.AssignRole(role.ID)
	return identity.NewPrincipal(user, role)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestAuthenticate(t *testing.T) {
	bob := principalFor(t, "bob@example.com", "Viewer", "product:read")
	claims := &auth.Claims{UserID: bob.UserID.String(), Kind: auth.TokenKindAccess}

	authn := new(mockAuthenticator)
	authn.On("Authenticate", mock.Anything, "good-token").Return(bob, claims, nil)
	authn.On("Authenticate", mock.Anything, "expired-token").Return(nil, nil, errTestUnauthorized)
	authn.On("Authenticate", mock.Anything, "revoked-token").
		Return(nil, nil, shared.NewDomainError("UNAUTHORIZED", "Token has been revoked"))
	authn.On("Authenticate", mock.Anything, "store-down").
		Return(nil, nil, errors.New("dial tcp: connection refused"))

	router := gin.New()
	router.Use(RequestID(), logger.GinMiddleware(zap.NewNop()))
	router.GET("/me", Authenticate(authn, zap.NewNop()), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		require.True(t, ok)
		assert.Same(t, claims, GetClaims(c))
		assert.Equal(t, userID.String(), logger.GetUserID(c.Request.Context()))
		assert.Equal(t, "Viewer", logger.GetRole(c.Request.Context()))
		c.String(http.StatusOK, userID.String())
	})

	request := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(AuthHeaderKey, header)
		}
		return serve(router, req)
	}

	t.Run("valid token", func(t *testing.T) {
		w := request("Bearer good-token")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, bob.UserID.String(), w.Body.String())
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, request("bearer good-token").Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := request("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
		info := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeUnauthorized, info.Code)
		assert.Equal(t, msgAuthenticationRequired, info.Message)
		assert.NotEmpty(t, info.RequestID)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("Basic Ym9iOnNlY3JldA==").Code)
	})

	t.Run("token failures share one message", func(t *testing.T) {
		expired := decodeError(t, request("Bearer expired-token"))
		revoked := decodeError(t, request("Bearer revoked-token"))
		assert.Equal(t, expired.Code, revoked.Code)
		assert.Equal(t, expired.Message, revoked.Message)
		assert.Equal(t, msgInvalidToken, expired.Message)
	})

	t.Run("store failure is a server error", func(t *testing.T) {
		w := request("Bearer store-down")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Code)
	})
}

func TestGetters_WithoutAuthentication(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetPrincipal(c))
	assert.Nil(t, GetClaims(c))
	id, ok := GetUserID(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
}
