package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/shopadmin/backoffice/internal/application/identity"
)

// =====================
// Permission DTOs
// =====================

// CreatePermissionRequest adds a name to the permission catalog
type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required,permission_name"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// PermissionResponse represents a catalog entry
type PermissionResponse struct {
	Name        string    `json:"name" example:"product:read"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// =====================
// Role DTOs
// =====================

// CreateRoleRequest represents the request body for creating a role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission_name"`
}

// UpdateRoleRequest represents the request body for updating a role.
// Omitted fields are kept; a present permissions list replaces the whole set.
type UpdateRoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Permissions *[]string `json:"permissions" binding:"omitempty,dive,permission_name"`
}

// RolePermissionResponse is one permission reference of a role
type RolePermissionResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Missing is set when the permission was removed from the catalog
	Missing bool `json:"missing,omitempty"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name" example:"Viewer"`
	Description string                   `json:"description,omitempty"`
	Permissions []RolePermissionResponse `json:"permissions"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// =====================
// User DTOs
// =====================

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Email       string  `json:"email" binding:"required,email,max=200"`
	DisplayName string  `json:"display_name" binding:"omitempty,max=200"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	RoleID      *string `json:"role_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest represents the request body for assigning a role to a user
type AssignRoleRequest struct {
	RoleID string `json:"role_id" binding:"required,uuid"`
}

// UserListQuery holds the query parameters of the user listing
type UserListQuery struct {
	Keyword   string `form:"keyword" binding:"omitempty,max=100"`
	RoleID    string `form:"role_id" binding:"omitempty,uuid"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=email display_name created_at updated_at last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func toPermissionResponse(p appidentity.PermissionDTO) PermissionResponse {
	return PermissionResponse{
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func toRoleResponse(role *appidentity.RoleDTO) RoleResponse {
	perms := make([]RolePermissionResponse, len(role.Permissions))
	for i, ref := range role.Permissions {
		perms[i] = RolePermissionResponse{
			Name:        ref.Name,
			Description: ref.Description,
			Missing:     ref.Missing,
		}
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}
