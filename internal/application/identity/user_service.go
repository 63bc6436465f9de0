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

// UserService handles administrative user management
type UserService struct {
	userRepo  identity.UserRepository
	roleRepo  identity.RoleRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewUserService creates a new user service; publisher may be nil
func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create provisions a user, optionally with a role
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	email := identity.NormalizeEmail(input.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	user, err := identity.NewUser(email, input.DisplayName, input.Password)
	if err != nil {
		return nil, err
	}

	var role *identity.Role
	if input.RoleID != nil {
		role, err = s.roleRepo.FindByID(ctx, *input.RoleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_INPUT", "Role does not exist")
			}
			return nil, err
		}
		user.AssignRole(role.ID)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.log(ctx).Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.log(ctx).Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", roleName(role)))
	info := ToUserInfo(user, role)
	return &info, nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, user)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user, role)
	return &info, nil
}

// List returns a page of users matching the filter
func (s *UserService) List(ctx context.Context, input UserListInput) (*UserListResult, error) {
	filter := identity.UserFilter{
		Keyword:   input.Keyword,
		RoleID:    input.RoleID,
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	roleNames, err := s.roleNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserInfo, 0, len(users))
	for _, u := range users {
		info := ToUserInfo(u, nil)
		if u.RoleID != nil {
			info.RoleName = roleNames[*u.RoleID]
		}
		out = append(out, info)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	return &UserListResult{
		Users:    out,
		Total:    total,
		Page:     page,
		PageSize: filter.Limit(),
	}, nil
}

// AssignRole points a user at a role, replacing the previous one
func (s *UserService) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roleRepo.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	user.AssignRole(role.ID)
	if err := s.userRepo.UpdateRole(ctx, user.ID, role.ID, user.UpdatedAt); err != nil {
		s.log(ctx).Error("Failed to assign role", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	s.publish(ctx, user)

	s.log(ctx).Info("Role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role", role.Name))
	info := ToUserInfo(user, role)
	return &info, nil
}

// VerifyEmail marks the user's email address as verified
func (s *UserService) VerifyEmail(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.VerifyEmail()
	if err := s.userRepo.SetEmailVerified(ctx, user.ID, user.UpdatedAt); err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, user)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user, role)
	return &info, nil
}

// Delete removes a user. Callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return shared.NewDomainError("INVALID_INPUT", "You cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).Info("User deleted", zap.String("user_id", id.String()), zap.String("by", actorID.String()))
	return nil
}

func (s *UserService) findRole(ctx context.Context, user *identity.User) (*identity.Role, error) {
	if !user.HasRole() {
		return nil, nil
	}
	role, err := s.roleRepo.FindByID(ctx, *user.RoleID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return role, err
}

func (s *UserService) roleNames(ctx context.Context) (map[uuid.UUID]string, error) {
	roles, err := s.roleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.Name
	}
	return names, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if s.publisher == nil {
		user.ClearDomainEvents()
		return
	}
	if err := event.PublishAndClear(ctx, s.publisher, user); err != nil {
		s.log(ctx).Warn("Failed to publish user events", zap.Error(err))
	}
}

// log returns the service logger tagged with the request and caller in ctx.
func (s *UserService) log(ctx context.Context) *zap.Logger {
	return logger.For(ctx, s.logger)
}
