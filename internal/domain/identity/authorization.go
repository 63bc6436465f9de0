package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Deny reasons reported by Check
const (
	DenyAuthenticationRequired = "authentication required"
	DenyNoRole                 = "no role/permissions"
	DenyMissingPermission      = "missing permission"
)

// Principal is the authenticated identity attached to a request after the
// authentication gate has resolved it against the credential store.
type Principal struct {
	UserID      uuid.UUID
	Email       string
	RoleID      *uuid.UUID
	RoleName    string
	Permissions map[string]struct{}
}

// NewPrincipal builds a principal from a user and its role, which may be nil
func NewPrincipal(user *User, role *Role) *Principal {
	p := &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: map[string]struct{}{},
	}
	if role != nil {
		p.RoleName = role.Name
		p.Permissions = role.PermissionSet()
	}
	return p
}

// HasRole reports whether the principal resolved to a role
func (p *Principal) HasRole() bool {
	return p.RoleID != nil && p.RoleName != ""
}

// Decision is the outcome of a single authorization check
type Decision struct {
	Allowed    bool
	Reason     string
	Permission string
}

// Message returns a client-facing description of a denial
func (d Decision) Message() string {
	switch d.Reason {
	case DenyAuthenticationRequired:
		return "Authentication required"
	case DenyNoRole:
		return "No role or permissions assigned"
	case DenyMissingPermission:
		return fmt.Sprintf("Missing required permission: %s", d.Permission)
	}
	return ""
}

// Unauthenticated reports whether the denial is due to a missing principal
func (d Decision) Unauthenticated() bool {
	return !d.Allowed && d.Reason == DenyAuthenticationRequired
}

// Check decides whether principal holds the required permission.
// Matching is exact and case-sensitive; nothing is cached between calls.
func Check(principal *Principal, required string) Decision {
	if principal == nil {
		return Decision{Reason: DenyAuthenticationRequired, Permission: required}
	}
	if !principal.HasRole() || len(principal.Permissions) == 0 {
		return Decision{Reason: DenyNoRole, Permission: required}
	}
	if _, ok := principal.Permissions[required]; !ok {
		return Decision{Reason: DenyMissingPermission, Permission: required}
	}
	return Decision{Allowed: true, Permission: required}
}
