package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/auth"
)

// LoginInput contains the credentials presented to the password login
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// LoginResult is returned after a successful login or token refresh
type LoginResult struct {
	Token *auth.TokenPair
	User  UserInfo
}

// UserInfo is the public view of a user
type UserInfo struct {
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

// RefreshTokenInput carries a refresh token presented for rotation
type RefreshTokenInput struct {
	RefreshToken string
}

// LogoutInput identifies the session being closed
type LogoutInput struct {
	UserID          uuid.UUID
	AccessTokenID   string
	AccessExpiresAt time.Time
}

// ChangePasswordInput contains input for a self-service password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// RegisterInput contains input for self-registration
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// CurrentUser describes the authenticated caller
type CurrentUser struct {
	User        UserInfo `json:"user"`
	Permissions []string `json:"permissions"`
}

// CreateRoleInput contains input for creating a role
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput contains input for updating a role.
// Nil fields are left untouched; a non-nil Permissions replaces the whole set.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions *[]string
}

// PermissionRef is a role's permission reference expanded against the catalog
type PermissionRef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Missing is set when the referenced permission is no longer in the catalog
	Missing bool `json:"missing,omitempty"`
}

// RoleDTO represents role data transfer object
type RoleDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Permissions []PermissionRef `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PermissionDTO represents a catalog entry
type PermissionDTO struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreatePermissionInput contains input for adding a permission to the catalog
type CreatePermissionInput struct {
	Name        string
	Description string
}

// CreateUserInput contains input for admin user provisioning
type CreateUserInput struct {
	Email       string
	DisplayName string
	Password    string
	RoleID      *uuid.UUID
}

// UserListInput contains filter options for listing users
type UserListInput struct {
	Keyword   string
	RoleID    *uuid.UUID
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// UserListResult is a page of users
type UserListResult struct {
	Users    []UserInfo `json:"users"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// ToUserInfo converts a domain user; role may be nil
func ToUserInfo(user *identity.User, role *identity.Role) UserInfo {
	info := UserInfo{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		RoleID:        user.RoleID,
		EmailVerified: user.EmailVerified,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
	if role != nil {
		info.RoleName = role.Name
	}
	return info
}

// ToPermissionDTO converts a domain permission
func ToPermissionDTO(p *identity.Permission) PermissionDTO {
	return PermissionDTO{
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// ToRoleDTO converts a role, expanding its references against catalog.
// A reference with no catalog entry is reported with Missing set.
func ToRoleDTO(role *identity.Role, catalog map[string]*identity.Permission) RoleDTO {
	refs := make([]PermissionRef, 0, len(role.Permissions))
	for _, name := range role.Permissions {
		ref := PermissionRef{Name: name}
		if p, ok := catalog[name]; ok {
			ref.Description = p.Description
		} else {
			ref.Missing = true
		}
		refs = append(refs, ref)
	}
	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: refs,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}
