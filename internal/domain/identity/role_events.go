package identity

import (
	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeRole       = "Role"
	AggregateTypePermission = "Permission"
)

// Role and permission domain event types
const (
	EventTypeRoleCreated       = "RoleCreated"
	EventTypeRoleUpdated       = "RoleUpdated"
	EventTypeRoleDeleted       = "RoleDeleted"
	EventTypePermissionCreated = "PermissionCreated"
	EventTypePermissionDeleted = "PermissionDeleted"
)

// permissionNamespace derives stable aggregate ids for permissions, which are
// identified by name rather than by UUID.
var permissionNamespace = uuid.MustParse("5b0f3c1e-8f43-4d8a-9a57-2f6c1f0a6d21")

// PermissionAggregateID returns the deterministic aggregate id for a permission name
func PermissionAggregateID(name string) uuid.UUID {
	return uuid.NewSHA1(permissionNamespace, []byte(name))
}

// RoleCreatedEvent is published when a new role is created
type RoleCreatedEvent struct {
	shared.BaseDomainEvent
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// NewRoleCreatedEvent creates a new RoleCreatedEvent
func NewRoleCreatedEvent(role *Role) *RoleCreatedEvent {
	return &RoleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleCreated, AggregateTypeRole, role.ID),
		Name:            role.Name,
		Permissions:     append([]string(nil), role.Permissions...),
	}
}

// RoleUpdatedEvent is published when a role is renamed or its permission set replaced
type RoleUpdatedEvent struct {
	shared.BaseDomainEvent
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// NewRoleUpdatedEvent creates a new RoleUpdatedEvent
func NewRoleUpdatedEvent(role *Role) *RoleUpdatedEvent {
	return &RoleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleUpdated, AggregateTypeRole, role.ID),
		Name:            role.Name,
		Permissions:     append([]string(nil), role.Permissions...),
	}
}

// RoleDeletedEvent is published when a role is deleted
type RoleDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewRoleDeletedEvent creates a new RoleDeletedEvent
func NewRoleDeletedEvent(role *Role) *RoleDeletedEvent {
	return &RoleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRoleDeleted, AggregateTypeRole, role.ID),
		Name:            role.Name,
	}
}

// PermissionCreatedEvent is published when a permission is added to the catalog
type PermissionCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewPermissionCreatedEvent creates a new PermissionCreatedEvent
func NewPermissionCreatedEvent(p *Permission) *PermissionCreatedEvent {
	return &PermissionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePermissionCreated, AggregateTypePermission, PermissionAggregateID(p.Name)),
		Name:            p.Name,
	}
}

// PermissionDeletedEvent is published when a permission is removed from the catalog.
// Roles that still reference the name are left untouched.
type PermissionDeletedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewPermissionDeletedEvent creates a new PermissionDeletedEvent
func NewPermissionDeletedEvent(p *Permission) *PermissionDeletedEvent {
	return &PermissionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePermissionDeleted, AggregateTypePermission, PermissionAggregateID(p.Name)),
		Name:            p.Name,
	}
}
