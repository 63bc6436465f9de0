package identity

import (
	"crypto/subtle"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetterRegex = regexp.MustCompile(`[a-zA-Z]`)
	hasNumberRegex = regexp.MustCompile(`[0-9]`)
)

// User represents a staff account.
// It is the aggregate root for user-related operations.
type User struct {
	shared.BaseAggregateRoot
	Email         string
	DisplayName   string
	PasswordHash  string
	RoleID        *uuid.UUID
	RefreshToken  string
	EmailVerified bool
	LastLoginAt   *time.Time
}

// NewUser creates a new user with a hashed password and no role
func NewUser(email, displayName, password string) (*User, error) {
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// NormalizeEmail trims and case-folds an email address
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

// SetEmail validates and sets the normalized email
func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.touch()
	return nil
}

// SetDisplayName sets the display name
func (u *User) SetDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = displayName
	u.touch()
	return nil
}

// ChangePassword verifies the old password and sets a new one.
// The stored refresh token is cleared so existing sessions cannot be refreshed.
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.RefreshToken = ""
	u.touch()
	return nil
}

// VerifyPassword compares a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// absentHash stands in for the stored hash when a login names no account.
var absentHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("absent-account-0"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return hash
})

// RejectPassword runs one bcrypt comparison at the stored-hash cost and
// always reports a mismatch. Logins for unknown emails call it so they take
// as long as a wrong password.
func RejectPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(absentHash(), []byte(password))
	return false
}

// AssignRole points the user at a single role, replacing any previous one
func (u *User) AssignRole(roleID uuid.UUID) {
	id := roleID
	u.RoleID = &id
	u.touch()
	u.AddDomainEvent(NewUserRoleAssignedEvent(u))
}

// HasRole reports whether the user references a role
func (u *User) HasRole() bool {
	return u.RoleID != nil && *u.RoleID != uuid.Nil
}

// VerifyEmail marks the email address as verified
func (u *User) VerifyEmail() {
	u.EmailVerified = true
	u.touch()
}

// RecordLogin stores the rotated refresh token and login time
func (u *User) RecordLogin(refreshToken string) {
	now := time.Now()
	u.RefreshToken = refreshToken
	u.LastLoginAt = &now
	u.AddDomainEvent(NewUserLoggedInEvent(u))
}

// RefreshTokenMatches reports whether token equals the stored refresh token.
// An empty stored value never matches.
func (u *User) RefreshTokenMatches(token string) bool {
	if u.RefreshToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.RefreshToken), []byte(token)) == 1
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !hasLetterRegex.MatchString(password) || !hasNumberRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
