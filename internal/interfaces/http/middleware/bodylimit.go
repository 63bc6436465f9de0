package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// the body reader for requests that do not declare one
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.Fail(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", getRequestID(c)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
