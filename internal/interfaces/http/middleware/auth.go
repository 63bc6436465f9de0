package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Gin context keys set by Authenticate
const (
	PrincipalKey  = "auth_principal"
	ClaimsKey     = "auth_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Client-facing messages. Every token failure shares one message so callers
// cannot tell an expired token from a revoked one or a deleted account.
const (
	msgAuthenticationRequired = "Authentication required"
	msgInvalidToken           = "Invalid or expired token"
)

// Authenticator resolves a bearer access token to a principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Principal, *auth.Claims, error)
}

// Authenticate returns the bearer-token authentication gate. On success the
// principal and claims are stored in the gin context and the request logger
// is enriched with the user id and role name. Missing or invalid tokens are
// answered with 401; failures of the credential store with 500.
func Authenticate(authenticator Authenticator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, msgAuthenticationRequired)
			return
		}

		principal, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, shared.ErrUnauthorized) {
				requestLogger(c, log).Debug("Rejected bearer token", zap.Error(err))
				abortUnauthorized(c, msgInvalidToken)
				return
			}
			log.Error("Authentication failed", zap.String("request_id", getRequestID(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.Fail(dto.ErrCodeInternal, "An internal error occurred", getRequestID(c)))
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(ClaimsKey, claims)

		ctx, reqLogger := logger.WithUser(c.Request.Context(), requestLogger(c, log), principal.UserID.String(), principal.RoleName)
		c.Request = c.Request.WithContext(ctx)
		c.Set(logger.GinLoggerKey, reqLogger)

		span := trace.SpanFromContext(ctx)
		if span.IsRecording() {
			span.SetAttributes(
				telemetry.KeyUserID.String(principal.UserID.String()),
				telemetry.KeyRoleName.String(principal.RoleName),
			)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if len(header) <= len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(BearerPrefix):])
	return token, token != ""
}

// requestLogger prefers the request-scoped logger installed by logger.GinMiddleware
func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, exists := c.Get(logger.GinLoggerKey); exists {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.Fail(dto.ErrCodeUnauthorized, message, getRequestID(c)))
}

// GetPrincipal returns the authenticated principal, or nil before Authenticate ran
func GetPrincipal(c *gin.Context) *identity.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(*identity.Principal); ok {
			return p
		}
	}
	return nil
}

// GetClaims returns the verified access token claims
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	p := GetPrincipal(c)
	if p == nil {
		return uuid.Nil, false
	}
	return p.UserID, true
}
