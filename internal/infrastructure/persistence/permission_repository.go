package persistence

import (
	"context"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPermissionRepository implements PermissionRepository using GORM
type GormPermissionRepository struct {
	db *gorm.DB
}

// NewGormPermissionRepository creates a new GormPermissionRepository
func NewGormPermissionRepository(db *gorm.DB) *GormPermissionRepository {
	return &GormPermissionRepository{db: db}
}

// Create stores a new permission
func (r *GormPermissionRepository) Create(ctx context.Context, permission *identity.Permission) error {
	return translateError(r.db.WithContext(ctx).Create(models.PermissionModelFromDomain(permission)).Error)
}

// CreateIfMissing inserts the permissions that do not exist yet and reports how many were added
func (r *GormPermissionRepository) CreateIfMissing(ctx context.Context, permissions []*identity.Permission) (int64, error) {
	if len(permissions) == 0 {
		return 0, nil
	}
	rows := make([]*models.PermissionModel, len(permissions))
	for i, p := range permissions {
		rows[i] = models.PermissionModelFromDomain(p)
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

// Delete removes a permission by name. role_permissions rows are left alone.
func (r *GormPermissionRepository) Delete(ctx context.Context, name string) error {
	return affected(r.db.WithContext(ctx).Delete(&models.PermissionModel{}, "name = ?", name))
}

// FindByName finds a permission by its name
func (r *GormPermissionRepository) FindByName(ctx context.Context, name string) (*identity.Permission, error) {
	var model models.PermissionModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNames returns the permissions that exist among names
func (r *GormPermissionRepository) FindByNames(ctx context.Context, names []string) ([]*identity.Permission, error) {
	if len(names) == 0 {
		return []*identity.Permission{}, nil
	}
	var rows []models.PermissionModel
	if err := r.db.WithContext(ctx).
		Where("name IN ?", names).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return permissionsToDomain(rows), nil
}

// FindAll returns every permission ordered by name
func (r *GormPermissionRepository) FindAll(ctx context.Context) ([]*identity.Permission, error) {
	var rows []models.PermissionModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return permissionsToDomain(rows), nil
}

// ExistsByName checks if a permission with the given name exists
func (r *GormPermissionRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PermissionModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func permissionsToDomain(rows []models.PermissionModel) []*identity.Permission {
	out := make([]*identity.Permission, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
