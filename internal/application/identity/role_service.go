package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/event"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// RoleService handles role management operations
type RoleService struct {
	roleRepo  identity.RoleRepository
	permRepo  identity.PermissionRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRoleService creates a new role service; publisher may be nil
func NewRoleService(
	roleRepo identity.RoleRepository,
	permRepo identity.PermissionRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roleRepo:  roleRepo,
		permRepo:  permRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func errDuplicateRoleName(name string) error {
	return shared.NewDomainError("ALREADY_EXISTS", "Role name already exists: "+name)
}

// Create creates a new role. Permission references are stored as given
// without checking that they exist in the catalog.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	role, err := identity.NewRole(input.Name, input.Description, input.Permissions)
	if err != nil {
		return nil, err
	}

	exists, err := s.roleRepo.ExistsByName(ctx, role.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateRoleName(role.Name)
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		s.log(ctx).Error("Failed to create role", zap.String("name", role.Name), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, role)

	s.log(ctx).Info("Role created",
		zap.String("role_id", role.ID.String()),
		zap.String("name", role.Name),
		zap.Int("permissions", len(role.Permissions)))
	return s.expand(ctx, role)
}

// Get returns a role by ID with its permissions expanded
func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, role)
}

// List returns every role. Permission references are expanded against the
// catalog; references without a catalog entry are flagged as missing.
func (s *RoleService) List(ctx context.Context) ([]RoleDTO, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoleDTO, 0, len(roles))
	for _, role := range roles {
		out = append(out, ToRoleDTO(role, catalog))
	}
	return out, nil
}

// Update renames a role, changes its description or replaces its permission
// set wholesale
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		oldName := role.Name
		if err := role.Rename(*input.Name); err != nil {
			return nil, err
		}
		if role.Name != oldName {
			existing, err := s.roleRepo.FindByName(ctx, role.Name)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			if existing != nil && existing.ID != role.ID {
				return nil, errDuplicateRoleName(role.Name)
			}
		}
	}
	if input.Description != nil {
		role.SetDescription(*input.Description)
	}
	if input.Permissions != nil {
		if err := role.ReplacePermissions(*input.Permissions); err != nil {
			return nil, err
		}
	}

	role.MarkUpdated()
	if err := s.roleRepo.Update(ctx, role); err != nil {
		s.log(ctx).Error("Failed to update role", zap.String("role_id", id.String()), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, role)

	s.log(ctx).Info("Role updated", zap.String("role_id", id.String()), zap.String("name", role.Name))
	return s.expand(ctx, role)
}

// Delete removes a role and returns it. Users that reference the role keep
// the reference and are left without permissions.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := s.expand(ctx, role)
	if err != nil {
		return nil, err
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		s.log(ctx).Error("Failed to delete role", zap.String("role_id", id.String()), zap.Error(err))
		return nil, err
	}
	role.MarkDeleted()
	s.publish(ctx, role)

	s.log(ctx).Info("Role deleted", zap.String("role_id", id.String()), zap.String("name", role.Name))
	return dto, nil
}

func (s *RoleService) expand(ctx context.Context, role *identity.Role) (*RoleDTO, error) {
	found, err := s.permRepo.FindByNames(ctx, role.Permissions)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*identity.Permission, len(found))
	for _, p := range found {
		catalog[p.Name] = p
	}
	dto := ToRoleDTO(role, catalog)
	return &dto, nil
}

func (s *RoleService) catalog(ctx context.Context) (map[string]*identity.Permission, error) {
	perms, err := s.permRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*identity.Permission, len(perms))
	for _, p := range perms {
		catalog[p.Name] = p
	}
	return catalog, nil
}

func (s *RoleService) publish(ctx context.Context, role *identity.Role) {
	if s.publisher == nil {
		role.ClearDomainEvents()
		return
	}
	if err := event.PublishAndClear(ctx, s.publisher, role); err != nil {
		s.log(ctx).Warn("Failed to publish role events", zap.Error(err))
	}
}

// log returns the service logger tagged with the request and caller in ctx.
func (s *RoleService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}
