package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
	"github.com/shopadmin/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RequestIDHeader is the header echoing the request id
const RequestIDHeader = "X-Request-ID"

var errNoCaller = errors.New("no authenticated caller on the request")

// BaseHandler holds the envelope writers shared by every handler.
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

func getUserID(c *gin.Context) (uuid.UUID, error) {
	if id, ok := middleware.GetUserID(c); ok {
		return id, nil
	}
	return uuid.Nil, errNoCaller
}

// parseUUIDParam answers 400 and reports false when the path parameter is not a UUID.
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err == nil {
		return id, true
	}
	h.BadRequest(c, "Invalid "+label+" ID format")
	return uuid.Nil, false
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Page(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope with an explicit status.
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.Fail(code, message, getRequestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError writes the envelope for err. Domain errors keep their message
// and pick the status from their code; everything else is logged and hidden
// behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var throttled *appidentity.TooManyAttemptsError
	if errors.As(err, &throttled) {
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(throttled)))
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}
	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
}

// retryAfterSeconds rounds up and never advertises less than one second.
func retryAfterSeconds(err *appidentity.TooManyAttemptsError) int {
	return max(1, int(math.Ceil(err.RetryAfter.Seconds())))
}
