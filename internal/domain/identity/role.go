package identity

import (
	"sort"
	"strings"
	"time"

	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// Maximum length of a role name
const maxRoleNameLength = 100

// Role is a named set of permission references assigned to users.
// It is the aggregate root for role-related operations.
//
// Permissions are held by identity (permission name), never as embedded copies.
// A reference may point at a permission that has since been removed from the
// catalog; such dangling references are kept and still take part in checks.
type Role struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Permissions []string
}

// NewRole creates a new role with the given permission references
func NewRole(name, description string, permissions []string) (*Role, error) {
	name = strings.TrimSpace(name)
	if err := validateRoleName(name); err != nil {
		return nil, err
	}
	perms, err := normalizePermissionRefs(permissions)
	if err != nil {
		return nil, err
	}

	role := &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       strings.TrimSpace(description),
		Permissions:       perms,
	}

	role.AddDomainEvent(NewRoleCreatedEvent(role))
	return role, nil
}

// Rename changes the role name
func (r *Role) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateRoleName(name); err != nil {
		return err
	}
	r.Name = name
	r.touch()
	return nil
}

// SetDescription updates the role description
func (r *Role) SetDescription(description string) {
	r.Description = strings.TrimSpace(description)
	r.touch()
}

// ReplacePermissions replaces the whole permission set.
// References are not checked against the catalog.
func (r *Role) ReplacePermissions(permissions []string) error {
	perms, err := normalizePermissionRefs(permissions)
	if err != nil {
		return err
	}
	r.Permissions = perms
	r.touch()
	return nil
}

// MarkUpdated records a RoleUpdated event after a batch of changes
func (r *Role) MarkUpdated() {
	r.AddDomainEvent(NewRoleUpdatedEvent(r))
}

// MarkDeleted records a RoleDeleted event
func (r *Role) MarkDeleted() {
	r.AddDomainEvent(NewRoleDeletedEvent(r))
}

// HasPermission reports whether the role references a permission with exactly this name
func (r *Role) HasPermission(name string) bool {
	for _, p := range r.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// PermissionSet returns the role's permission names as a set
func (r *Role) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		set[p] = struct{}{}
	}
	return set
}

func (r *Role) touch() {
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

func validateRoleName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if len(name) > maxRoleNameLength {
		return shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot exceed 100 characters")
	}
	return nil
}

// normalizePermissionRefs validates, de-duplicates and sorts permission references
func normalizePermissionRefs(permissions []string) ([]string, error) {
	seen := make(map[string]struct{}, len(permissions))
	out := make([]string, 0, len(permissions))
	for _, p := range permissions {
		p = strings.TrimSpace(p)
		if err := ValidatePermissionName(p); err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
