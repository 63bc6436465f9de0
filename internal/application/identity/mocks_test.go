package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// value reads a typed return value, treating a nil interface as the zero value.
func value[T any](args mock.Arguments, i int) T {
	v, _ := args.Get(i).(T)
	return v
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}


func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	return value[*identity.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	return value[*identity.User](args, 0), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return value[[]*identity.User](args, 0), value[int64](args, 1), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *MockUserRepository) RecordLogin(ctx context.Context, id uuid.UUID, checkedHash, refreshToken string, at time.Time) error {
	return m.Called(ctx, id, checkedHash, refreshToken, at).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return m.Called(ctx, id, hash, at).Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id, roleID uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, roleID, at).Error(0)
}

func (m *MockUserRepository) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return value[int64](args, 0), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *identity.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	args := m.Called(ctx, id)
	return value[*identity.Role](args, 0), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	args := m.Called(ctx, name)
	return value[*identity.Role](args, 0), args.Error(1)
}

func (m *MockRoleRepository) FindAll(ctx context.Context) ([]*identity.Role, error) {
	args := m.Called(ctx)
	return value[[]*identity.Role](args, 0), args.Error(1)
}

func (m *MockRoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Create(ctx context.Context, permission *identity.Permission) error {
	return m.Called(ctx, permission).Error(0)
}

func (m *MockPermissionRepository) CreateIfMissing(ctx context.Context, permissions []*identity.Permission) (int64, error) {
	args := m.Called(ctx, permissions)
	return value[int64](args, 0), args.Error(1)
}

func (m *MockPermissionRepository) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockPermissionRepository) FindByName(ctx context.Context, name string) (*identity.Permission, error) {
	args := m.Called(ctx, name)
	return value[*identity.Permission](args, 0), args.Error(1)
}

func (m *MockPermissionRepository) FindByNames(ctx context.Context, names []string) ([]*identity.Permission, error) {
	args := m.Called(ctx, names)
	return value[[]*identity.Permission](args, 0), args.Error(1)
}

func (m *MockPermissionRepository) FindAll(ctx context.Context) ([]*identity.Permission, error) {
	args := m.Called(ctx)
	return value[[]*identity.Permission](args, 0), args.Error(1)
}

func (m *MockPermissionRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

var (
	_ identity.UserRepository       = (*MockUserRepository)(nil)
	_ identity.RoleRepository       = (*MockRoleRepository)(nil)
	_ identity.PermissionRepository = (*MockPermissionRepository)(nil)
	_ shared.EventPublisher         = (*recordingPublisher)(nil)
)
