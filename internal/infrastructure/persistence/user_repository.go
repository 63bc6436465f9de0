package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository stores users in the users table. Emails are stored
// normalized, so every lookup normalizes its argument the same way.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) users(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.UserModel{})
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error)
}

// revise writes columns of one user and bumps its version.
func (r *GormUserRepository) revise(ctx context.Context, id uuid.UUID, at time.Time, columns map[string]any) error {
	columns["version"] = gorm.Expr("version + 1")
	columns["updated_at"] = at
	return affected(r.users(ctx).Where("id = ?", id).UpdateColumns(columns))
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return r.revise(ctx, id, at, map[string]any{"password_hash": hash, "refresh_token": ""})
}

func (r *GormUserRepository) UpdateRole(ctx context.Context, id, roleID uuid.UUID, at time.Time) error {
	return r.revise(ctx, id, at, map[string]any{"role_id": roleID})
}

func (r *GormUserRepository) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.revise(ctx, id, at, map[string]any{"email_verified": true})
}

// RecordLogin matches on the password hash as well as the id, so a login
// racing a password change cannot store a session for the old password.
func (r *GormUserRepository) RecordLogin(ctx context.Context, id uuid.UUID, checkedHash, refreshToken string, at time.Time) error {
	return affected(r.users(ctx).
		Where("id = ? AND password_hash = ?", id, checkedHash).
		UpdateColumns(map[string]any{"refresh_token": refreshToken, "last_login_at": at}))
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id))
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.first(r.db.WithContext(ctx).Where("email = ?", identity.NormalizeEmail(email)))
}

func (r *GormUserRepository) first(query *gorm.DB) (*identity.User, error) {
	var row models.UserModel
	if err := query.First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// FindAll returns one page of the users matching filter and the number of
// matches across all pages.
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	matching := r.users(ctx).Scopes(userMatches(filter)).Session(&gorm.Session{})

	var total int64
	if err := matching.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserModel
	err := matching.
		Scopes(
			orderBy(userColumns, filter.SortBy, filter.SortOrder, "created_at"),
			paginate(filter.Offset(), filter.Limit()),
		).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*identity.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].ToDomain())
	}
	return users, total, nil
}

// userMatches narrows the users table by keyword (email or display name,
// case-insensitive) and role.
func userMatches(filter identity.UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if kw := strings.ToLower(strings.TrimSpace(filter.Keyword)); kw != "" {
			like := "%" + kw + "%"
			db = db.Where("LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
		}
		if filter.RoleID != nil {
			db = db.Where("role_id = ?", *filter.RoleID)
		}
		return db
	}
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.users(ctx).Where("email = ?", identity.NormalizeEmail(email)).Count(&n).Error
	return n > 0, err
}

// UpdateRefreshToken writes only the refresh_token column; the last writer wins.
func (r *GormUserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return affected(r.users(ctx).Where("id = ?", id).UpdateColumn("refresh_token", token))
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.users(ctx).Count(&n).Error
	return n, err
}
