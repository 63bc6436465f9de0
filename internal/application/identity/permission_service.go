package identity

import (
	"context"
	"strings"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PermissionService manages the permission catalog
type PermissionService struct {
	permRepo  identity.PermissionRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPermissionService creates a new permission service; publisher may be nil
func NewPermissionService(
	permRepo identity.PermissionRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PermissionService {
	return &PermissionService{
		permRepo:  permRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns the whole catalog sorted by name
func (s *PermissionService) List(ctx context.Context) ([]PermissionDTO, error) {
	perms, err := s.permRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PermissionDTO, 0, len(perms))
	for _, p := range perms {
		out = append(out, ToPermissionDTO(p))
	}
	return out, nil
}

// Get returns a single permission by name
func (s *PermissionService) Get(ctx context.Context, name string) (*PermissionDTO, error) {
	p, err := s.permRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	dto := ToPermissionDTO(p)
	return &dto, nil
}

// Create adds a permission to the catalog
func (s *PermissionService) Create(ctx context.Context, input CreatePermissionInput) (*PermissionDTO, error) {
	p, err := identity.NewPermission(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	exists, err := s.permRepo.ExistsByName(ctx, p.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Permission already exists: "+p.Name)
	}

	if err := s.permRepo.Create(ctx, p); err != nil {
		s.log(ctx).Error("Failed to create permission", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, identity.NewPermissionCreatedEvent(p))

	s.log(ctx).Info("Permission created", zap.String("name", p.Name))
	dto := ToPermissionDTO(p)
	return &dto, nil
}

// Delete removes a permission from the catalog and returns it.
// Roles referencing it keep the reference.
func (s *PermissionService) Delete(ctx context.Context, name string) (*PermissionDTO, error) {
	p, err := s.permRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if err := s.permRepo.Delete(ctx, p.Name); err != nil {
		s.log(ctx).Error("Failed to delete permission", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, identity.NewPermissionDeletedEvent(p))

	s.log(ctx).Info("Permission deleted", zap.String("name", p.Name))
	dto := ToPermissionDTO(p)
	return &dto, nil
}

// Seed inserts the default catalog entries that are not stored yet.
// Running it again adds nothing.
func (s *PermissionService) Seed(ctx context.Context) (int64, error) {
	catalog := identity.DefaultPermissionCatalog()
	perms := make([]*identity.Permission, 0, len(catalog))
	for i := range catalog {
		perms = append(perms, &catalog[i])
	}

	added, err := s.permRepo.CreateIfMissing(ctx, perms)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.log(ctx).Info("Seeded permission catalog", zap.Int64("added", added))
	}
	return added, nil
}

func (s *PermissionService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log(ctx).Warn("Failed to publish permission events", zap.Error(err))
	}
}

// log returns the service logger tagged with the request and caller in ctx.
func (s *PermissionService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}
