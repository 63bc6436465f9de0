package identity

import (
	"context"

	"github.com/google/uuid"
)

// PermissionRepository defines the interface for permission catalog persistence
type PermissionRepository interface {
	// Create stores a new permission
	Create(ctx context.Context, permission *Permission) error

	// CreateIfMissing inserts the permissions that are not stored yet and
	// returns how many rows were added
	CreateIfMissing(ctx context.Context, permissions []*Permission) (int64, error)

	// Delete removes a permission by name. Role references are not touched.
	Delete(ctx context.Context, name string) error

	// FindByName finds a permission by its name
	FindByName(ctx context.Context, name string) (*Permission, error)

	// FindByNames returns the permissions that exist among names
	FindByNames(ctx context.Context, names []string) ([]*Permission, error)

	// FindAll returns every permission ordered by name
	FindAll(ctx context.Context) ([]*Permission, error)

	// ExistsByName checks if a permission with the given name exists
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// RoleRepository defines the interface for role persistence operations
type RoleRepository interface {
	// Create creates a new role together with its permission references
	Create(ctx context.Context, role *Role) error

	// Update updates an existing role and replaces its permission references
	Update(ctx context.Context, role *Role) error

	// Delete deletes a role by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a role by ID with its permission references loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)

	// FindByName finds a role by its unique name
	FindByName(ctx context.Context, name string) (*Role, error)

	// FindAll returns all roles ordered by name
	FindAll(ctx context.Context) ([]*Role, error)

	// ExistsByName checks if a role with the given name exists
	ExistsByName(ctx context.Context, name string) (bool, error)
}
