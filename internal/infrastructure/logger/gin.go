package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Keys under which request-scoped values live in the gin context.
const (
	GinRequestIDKey = "request_id"
	GinLoggerKey    = "logger"
)

// GinMiddleware writes one access log line per request. It also derives a
// request logger carrying the request id, method and path, stores it under
// GinLoggerKey, and puts the id on the request context for For.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx, log := WithRequestID(req.Context(), base, c.GetString(GinRequestIDKey))
		log = log.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
		c.Request = req.WithContext(ctx)
		c.Set(GinLoggerKey, log)

		c.Next()

		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 9)
		fields = append(fields,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", req.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		)
		if q := req.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		// The auth middleware replaces c.Request, so read the final context.
		final := c.Request.Context()
		if id := GetUserID(final); id != "" {
			fields = append(fields, zap.String("user_id", id))
		}
		if id := GetTraceID(final); id != "" {
			fields = append(fields, zap.String("trace_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}
		log.Log(statusLevel(status), "HTTP Request", fields...)
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recovery turns a handler panic into a 500 ERR_INTERNAL envelope. The
// panic value is logged with a stack trace and never sent to the client.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestID := c.GetString(GinRequestIDKey)
			loggerOr(c, base).Error("Panic recovered",
				zap.String("request_id", requestID),
				zap.Any("panic", r),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":       "ERR_INTERNAL",
					"message":    "An unexpected error occurred",
					"request_id": requestID,
					"timestamp":  time.Now().UTC(),
				},
			})
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger, or a no-op logger outside
// GinMiddleware.
func GetGinLogger(c *gin.Context) *zap.Logger {
	return loggerOr(c, zap.NewNop())
}

func loggerOr(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Value(GinLoggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}
