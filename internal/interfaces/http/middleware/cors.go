package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig lists what browsers on the admin UI origins may do. An empty
// AllowOrigins refuses every cross-origin caller; "*" admits any origin
// but never with credentials.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, TraceIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS answers preflights with 204 and decorates responses to allowed
// origins. Responses to other origins carry no CORS headers, so the
// browser withholds them from the page.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.AllowOrigins, "*")
	shared := http.Header{}
	shared.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
	shared.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	if len(cfg.ExposeHeaders) > 0 {
		shared.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		shared.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge/time.Second)))
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		switch {
		case anyOrigin:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(cfg.AllowOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		default:
			origin = ""
		}
		if anyOrigin || origin != "" {
			for k, v := range shared {
				h[k] = slices.Clone(v)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
