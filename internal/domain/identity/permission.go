package identity

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// Maximum length of a permission name
const maxPermissionNameLength = 100

// Resource and action names used by the seeded permission catalog.
// Permission names follow the "resource:action" convention.
const (
	ResourceProduct    = "product"
	ResourceCategory   = "category"
	ResourceBrand      = "brand"
	ResourceCollection = "collection"
	ResourceAttribute  = "attribute"
	ResourceInventory  = "inventory"
	ResourceWarehouse  = "warehouse"
	ResourceUser       = "user"
	ResourceRole       = "role"
	ResourcePermission = "permission"

	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Permission names guarding the identity administration routes
var (
	PermPermissionRead   = PermissionName(ResourcePermission, ActionRead)
	PermPermissionCreate = PermissionName(ResourcePermission, ActionCreate)
	PermPermissionDelete = PermissionName(ResourcePermission, ActionDelete)
	PermRoleRead         = PermissionName(ResourceRole, ActionRead)
	PermRoleCreate       = PermissionName(ResourceRole, ActionCreate)
	PermRoleUpdate       = PermissionName(ResourceRole, ActionUpdate)
	PermRoleDelete       = PermissionName(ResourceRole, ActionDelete)
	PermUserRead         = PermissionName(ResourceUser, ActionRead)
	PermUserCreate       = PermissionName(ResourceUser, ActionCreate)
	PermUserUpdate       = PermissionName(ResourceUser, ActionUpdate)
	PermUserDelete       = PermissionName(ResourceUser, ActionDelete)
)

// Permission is an atomic named capability token, e.g. "product:create".
// Its identity is its name; roles reference permissions by name.
type Permission struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// NewPermission creates a permission after validating its name
func NewPermission(name, description string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if err := ValidatePermissionName(name); err != nil {
		return nil, err
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_PERMISSION", "Permission description cannot exceed 500 characters")
	}
	return &Permission{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}, nil
}

// PermissionName joins a resource and an action into a permission name
func PermissionName(resource, action string) string {
	return resource + ":" + action
}

// ValidatePermissionName checks that a permission name is usable as a token.
// Names are case-sensitive and compared verbatim, so no normalization happens here.
func ValidatePermissionName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_PERMISSION", "Permission name cannot be empty")
	}
	if len(name) > maxPermissionNameLength {
		return shared.NewDomainError("INVALID_PERMISSION", "Permission name cannot exceed 100 characters")
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return shared.NewDomainError("INVALID_PERMISSION", "Permission name cannot contain whitespace")
		}
	}
	return nil
}

// DefaultPermissionCatalog returns the permissions seeded on first start.
func DefaultPermissionCatalog() []Permission {
	resources := []struct {
		name  string
		label string
	}{
		{ResourceProduct, "products"},
		{ResourceCategory, "categories"},
		{ResourceBrand, "brands"},
		{ResourceCollection, "collections"},
		{ResourceAttribute, "product attributes"},
		{ResourceInventory, "inventory"},
		{ResourceWarehouse, "warehouses"},
		{ResourceUser, "staff accounts"},
		{ResourceRole, "roles"},
		{ResourcePermission, "the permission catalog"},
	}
	actions := []struct {
		name string
		verb string
	}{
		{ActionCreate, "Create"},
		{ActionRead, "View"},
		{ActionUpdate, "Edit"},
		{ActionDelete, "Delete"},
	}

	catalog := make([]Permission, 0, len(resources)*len(actions))
	for _, res := range resources {
		for _, act := range actions {
			catalog = append(catalog, Permission{
				Name:        PermissionName(res.name, act.name),
				Description: act.verb + " " + res.label,
			})
		}
	}
	return catalog
}
