package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/interfaces/http/dto"
)

// PermissionNameTag is the binding tag for catalog permission names.
const PermissionNameTag = "permission_name"

var setupOnce sync.Once

// SetupValidator makes gin's validator report JSON field names and
// registers PermissionNameTag. Only the first call has an effect.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation(PermissionNameTag, func(fl validator.FieldLevel) bool {
			return identity.ValidatePermissionName(fl.Field().String()) == nil
		})
	})
}

func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return ""
}

// HandleValidationError answers 400 ERR_VALIDATION. Field failures are
// listed in details; a body that did not decode gets a single message.
func HandleValidationError(c *gin.Context, err error) {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		c.JSON(http.StatusBadRequest, dto.Invalid("Malformed request body", getRequestID(c), nil))
		return
	}

	details := make([]dto.ValidationDetail, 0, len(fields))
	for _, fe := range fields {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Tag: fe.Tag(), Message: describe(fe)})
	}
	c.JSON(http.StatusBadRequest, dto.Invalid("Request validation failed", getRequestID(c), details))
}

var tagMessages = map[string]func(p string) string{
	"required":        func(string) string { return "This field is required" },
	"email":           func(string) string { return "Invalid email format" },
	"uuid":            func(string) string { return "Invalid UUID format" },
	"oneof":           func(p string) string { return "Must be one of: " + p },
	"gte":             func(p string) string { return "Must be greater than or equal to " + p },
	"lte":             func(p string) string { return "Must be less than or equal to " + p },
	"dive":            func(string) string { return "Invalid list entry" },
	PermissionNameTag: func(string) string { return "Must be a non-empty name without whitespace, at most 100 characters" },
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit(fe.Kind())
	case "max":
		return "Must be at most " + fe.Param() + unit(fe.Kind())
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg(fe.Param())
	}
	return "Invalid value"
}

// unit qualifies a min/max bound by what it counts.
func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
