package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Bootstrapper seeds the permission catalog and the initial administrator.
// Every step is idempotent so it runs on each start.
type Bootstrapper struct {
	permissions *PermissionService
	permRepo    identity.PermissionRepository
	roleRepo    identity.RoleRepository
	userRepo    identity.UserRepository
	cfg         config.BootstrapConfig
	logger      *zap.Logger
}

// NewBootstrapper creates a new bootstrapper
func NewBootstrapper(
	permRepo identity.PermissionRepository,
	roleRepo identity.RoleRepository,
	userRepo identity.UserRepository,
	cfg config.BootstrapConfig,
	logger *zap.Logger,
) *Bootstrapper {
	return &Bootstrapper{
		permissions: NewPermissionService(permRepo, nil, logger),
		permRepo:    permRepo,
		roleRepo:    roleRepo,
		userRepo:    userRepo,
		cfg:         cfg,
		logger:      logger.Named("bootstrap"),
	}
}

// Run seeds the catalog, then the admin role and admin user when configured
func (b *Bootstrapper) Run(ctx context.Context) error {
	if b.cfg.SeedPermissions {
		if _, err := b.permissions.Seed(ctx); err != nil {
			return fmt.Errorf("seed permissions: %w", err)
		}
	}

	if b.cfg.AdminEmail == "" {
		return nil
	}

	role, err := b.ensureAdminRole(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap admin role: %w", err)
	}
	if err := b.ensureAdminUser(ctx, role); err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	return nil
}

// ensureAdminRole creates the admin role or widens it to the current catalog
func (b *Bootstrapper) ensureAdminRole(ctx context.Context) (*identity.Role, error) {
	perms, err := b.permRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}

	role, err := b.roleRepo.FindByName(ctx, b.cfg.AdminRoleName)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		role, err = identity.NewRole(b.cfg.AdminRoleName, "Full access to the back office", names)
		if err != nil {
			return nil, err
		}
		if err := b.roleRepo.Create(ctx, role); err != nil {
			return nil, err
		}
		role.ClearDomainEvents()
		b.log(ctx).Info("Created admin role",
			zap.String("role", role.Name),
			zap.Int("permissions", len(names)))
		return role, nil
	case err != nil:
		return nil, err
	}

	missing := false
	for _, name := range names {
		if !role.HasPermission(name) {
			missing = true
			break
		}
	}
	if !missing {
		return role, nil
	}

	if err := role.ReplacePermissions(append(names, role.Permissions...)); err != nil {
		return nil, err
	}
	if err := b.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	b.log(ctx).Info("Extended admin role to the full catalog", zap.String("role", role.Name))
	return role, nil
}

// ensureAdminUser creates the admin account. An existing account keeps its
// password and is only pointed back at the admin role.
func (b *Bootstrapper) ensureAdminUser(ctx context.Context, role *identity.Role) error {
	user, err := b.userRepo.FindByEmail(ctx, identity.NormalizeEmail(b.cfg.AdminEmail))
	switch {
	case errors.Is(err, shared.ErrNotFound):
		user, err = identity.NewUser(b.cfg.AdminEmail, "Administrator", b.cfg.AdminPassword)
		if err != nil {
			return err
		}
		user.AssignRole(role.ID)
		user.VerifyEmail()
		if err := b.userRepo.Create(ctx, user); err != nil {
			return err
		}
		user.ClearDomainEvents()
		b.log(ctx).Info("Created admin user", zap.String("email", user.Email))
		return nil
	case err != nil:
		return err
	}

	if user.RoleID != nil && *user.RoleID == role.ID {
		return nil
	}
	user.AssignRole(role.ID)
	user.ClearDomainEvents()
	if err := b.userRepo.UpdateRole(ctx, user.ID, role.ID, user.UpdatedAt); err != nil {
		return err
	}
	b.log(ctx).Info("Reassigned admin role", zap.String("email", user.Email))
	return nil
}

// log returns the service logger tagged with the request and caller in ctx.
func (b *Bootstrapper) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, b.logger)
}
