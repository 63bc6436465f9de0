package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements RoleRepository using GORM.
// Permission references live in role_permissions and are not checked against
// the permissions table.
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// Create creates a new role together with its permission references
func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Permissions").Create(models.RoleModelFromDomain(role)).Error; err != nil {
			return translateError(err)
		}
		return insertRolePermissions(tx, role)
	})
}

// Update updates an existing role and replaces its permission references wholesale
func (r *GormRoleRepository) Update(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := affected(tx.Model(&models.RoleModel{}).
			Where("id = ?", role.ID).
			Updates(map[string]any{
				"name":        role.Name,
				"description": role.Description,
				"version":     role.Version,
				"updated_at":  role.UpdatedAt,
			}))
		if err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		return insertRolePermissions(tx, role)
	})
}

func insertRolePermissions(tx *gorm.DB, role *identity.Role) error {
	rows := models.RolePermissionModels(role)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// Delete deletes a role by ID. Users that reference it are left as they are.
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}

		return affected(tx.Delete(&models.RoleModel{}, "id = ?", id))
	})
}

// FindByID finds a role by ID with its permission references loaded
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds a role by its unique name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.preloaded(ctx).First(&model, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns all roles ordered by name
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]*identity.Role, error) {
	var rows []models.RoleModel
	if err := r.preloaded(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]*identity.Role, len(rows))
	for i := range rows {
		roles[i] = rows[i].ToDomain()
	}
	return roles, nil
}

// ExistsByName checks if a role with the given name exists
func (r *GormRoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRoleRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Permissions", func(db *gorm.DB) *gorm.DB {
		return db.Order("permission_name ASC")
	})
}
