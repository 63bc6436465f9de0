package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps a caller-supplied X-Request-ID of at most
// MaxRequestIDLength bytes and mints a ULID otherwise. The id is stored in
// the gin context and the request context, and echoed on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > MaxRequestIDLength {
			id = ulid.Make().String()
		}
		c.Set(logger.GinRequestIDKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// SecurityConfig tunes SecurityHeaders. HSTS is off by default since TLS
// normally terminates at the load balancer.
type SecurityConfig struct {
	HSTSMaxAge            time.Duration // zero disables Strict-Transport-Security
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	ContentSecurityPolicy string
	PermissionsPolicy     string
}

func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSIncludeSubdomains: true,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

// SecurityHeaders sets a fixed header block on every response.
// Cache-Control is no-store because responses may carry tokens.
func SecurityHeaders(cfg SecurityConfig) gin.HandlerFunc {
	fixed := [][2]string{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Cache-Control", "no-store"},
	}
	if cfg.ContentSecurityPolicy != "" {
		fixed = append(fixed, [2]string{"Content-Security-Policy", cfg.ContentSecurityPolicy})
	}
	if cfg.PermissionsPolicy != "" {
		fixed = append(fixed, [2]string{"Permissions-Policy", cfg.PermissionsPolicy})
	}
	if cfg.HSTSMaxAge > 0 {
		v := "max-age=" + strconv.FormatInt(int64(cfg.HSTSMaxAge/time.Second), 10)
		if cfg.HSTSIncludeSubdomains {
			v += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			v += "; preload"
		}
		fixed = append(fixed, [2]string{"Strict-Transport-Security", v})
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range fixed {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
