package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
)

// =====================
// Auth Request DTOs
// =====================

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh.
// The token may be omitted when it is sent in the refresh cookie instead.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest represents the request body for self-registration
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=200"`
	DisplayName string `json:"display_name" binding:"omitempty,max=200"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
}

// ChangePasswordRequest represents the request body for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type" example:"Bearer"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"display_name"`
	RoleID        *uuid.UUID `json:"role_id,omitempty"`
	RoleName      string     `json:"role_name,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LoginResponse represents the response body for successful login or refresh
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// CurrentUserResponse represents the response body for current user info
type CurrentUserResponse struct {
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}

// LogoutResponse represents the response body for logout
type LogoutResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func toUserResponse(info appidentity.UserInfo) UserResponse {
	return UserResponse{
		ID:            info.ID,
		Email:         info.Email,
		DisplayName:   info.DisplayName,
		RoleID:        info.RoleID,
		RoleName:      info.RoleName,
		EmailVerified: info.EmailVerified,
		LastLoginAt:   info.LastLoginAt,
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
	}
}

func toUserResponses(infos []appidentity.UserInfo) []UserResponse {
	out := make([]UserResponse, len(infos))
	for i, info := range infos {
		out[i] = toUserResponse(info)
	}
	return out
}
