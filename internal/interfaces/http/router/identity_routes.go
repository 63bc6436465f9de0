package router

import (
	"net/http"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/interfaces/http/handler"
	"github.com/shopadmin/backoffice/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted under the API prefix
type Handlers struct {
	Auth        *handler.AuthHandler
	Permissions *handler.PermissionHandler
	Roles       *handler.RoleHandler
	Users       *handler.UserHandler
	System      *handler.SystemHandler
}

// APIGroups declares every API route with the access it requires
func APIGroups(guard *middleware.Guard, h Handlers) []*DomainGroup {
	auth := NewDomainGroup("auth", "/auth").WithGuard(guard).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken).
		POST("/register", h.Auth.Register).
		Authenticated(http.MethodPost, "/logout", h.Auth.Logout).
		Authenticated(http.MethodGet, "/me", h.Auth.GetCurrentUser).
		Authenticated(http.MethodPut, "/password", h.Auth.ChangePassword)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	permissions := NewDomainGroup("permissions", "/permissions").WithGuard(guard).
		Protected(http.MethodGet, "", identity.PermPermissionRead, h.Permissions.List).
		Protected(http.MethodGet, "/:name", identity.PermPermissionRead, h.Permissions.Get).
		Protected(http.MethodPost, "", identity.PermPermissionCreate, h.Permissions.Create).
		Protected(http.MethodDelete, "/:name", identity.PermPermissionDelete, h.Permissions.Delete)

	roles := NewDomainGroup("roles", "/roles").WithGuard(guard).
		Protected(http.MethodGet, "", identity.PermRoleRead, h.Roles.List).
		Protected(http.MethodGet, "/:id", identity.PermRoleRead, h.Roles.GetByID).
		Protected(http.MethodPost, "", identity.PermRoleCreate, h.Roles.Create).
		Protected(http.MethodPut, "/:id", identity.PermRoleUpdate, h.Roles.Update).
		Protected(http.MethodDelete, "/:id", identity.PermRoleDelete, h.Roles.Delete)

	users := NewDomainGroup("users", "/users").WithGuard(guard).
		Protected(http.MethodGet, "", identity.PermUserRead, h.Users.List).
		Protected(http.MethodGet, "/:id", identity.PermUserRead, h.Users.GetByID).
		Protected(http.MethodPost, "", identity.PermUserCreate, h.Users.Create).
		Protected(http.MethodPut, "/:id/role", identity.PermUserUpdate, h.Users.AssignRole).
		Protected(http.MethodPost, "/:id/verify-email", identity.PermUserUpdate, h.Users.VerifyEmail).
		Protected(http.MethodDelete, "/:id", identity.PermUserDelete, h.Users.Delete)

	return []*DomainGroup{auth, system, permissions, roles, users}
}
