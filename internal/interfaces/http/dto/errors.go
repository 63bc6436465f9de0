package dto

import (
	"net/http"
	"strings"
)

// Codes reported in the error envelope
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	// ErrCodeUnauthorized covers a missing or unusable access token
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenInvalid is a refresh token that is malformed, expired or superseded
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidCredentials is every failed password login, whatever the cause
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeInvalidPassword is a rejected new password or a wrong current one
	ErrCodeInvalidPassword = "ERR_INVALID_PASSWORD"
	// ErrCodeForbidden means the caller's role lacks the route's permission
	ErrCodeForbidden = "ERR_FORBIDDEN"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeTooManyAttempts = "ERR_TOO_MANY_ATTEMPTS"
)

var httpStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeInvalidPassword:    http.StatusBadRequest,
	ErrCodeForbidden:          http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyAttempts: http.StatusTooManyRequests,
}

// domainCodes translates shared.DomainError codes raised below the HTTP layer
var domainCodes = map[string]string{
	"INTERNAL_ERROR":        ErrCodeInternal,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"UNAUTHORIZED":          ErrCodeUnauthorized,
	"FORBIDDEN":             ErrCodeForbidden,
	"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
	"INVALID_REFRESH_TOKEN": ErrCodeTokenInvalid,
	"INVALID_PASSWORD":      ErrCodeInvalidPassword,
	"TOO_MANY_ATTEMPTS":     ErrCodeTooManyAttempts,
}

// GetHTTPStatus returns the status for an envelope code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode turns a domain error code into an envelope code.
// INVALID_* codes without an entry of their own (INVALID_EMAIL,
// INVALID_ROLE_NAME, ...) become ErrCodeInvalidInput. Codes that are already
// in envelope form, or unknown, are returned unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainCodes[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
