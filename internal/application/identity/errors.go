package identity

import (
	"fmt"
	"math"
	"time"

	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// Error codes raised by the identity services
const (
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeTooManyAttempts     = "TOO_MANY_ATTEMPTS"
)

// ErrInvalidCredentials is returned for every failed password login.
// An unknown email and a wrong password must be indistinguishable to the caller.
var ErrInvalidCredentials = shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")

// ErrInvalidRefreshToken is returned when a refresh token fails verification
// or no longer matches the one stored for the user
var ErrInvalidRefreshToken = shared.NewDomainError(CodeInvalidRefreshToken, "Invalid or expired refresh token")

// TooManyAttemptsError is returned once the login budget for an email and
// address is spent
type TooManyAttemptsError struct {
	*shared.DomainError
	RetryAfter time.Duration
}

func newTooManyAttemptsError(retryAfter time.Duration) *TooManyAttemptsError {
	seconds := int64(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return &TooManyAttemptsError{
		DomainError: shared.NewDomainError(CodeTooManyAttempts,
			fmt.Sprintf("Too many login attempts. Try again in %d seconds", seconds)),
		RetryAfter: retryAfter,
	}
}

// Unwrap exposes the domain error to errors.As
func (e *TooManyAttemptsError) Unwrap() error {
	return e.DomainError
}
