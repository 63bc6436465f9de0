package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
)

// PermissionModel is the persistence model for a catalog permission.
// The name is the primary key.
type PermissionModel struct {
	Name        string    `gorm:"type:varchar(100);primaryKey"`
	Description string    `gorm:"type:varchar(500);not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PermissionModel) TableName() string {
	return "permissions"
}

// ToDomain converts the persistence model to a domain Permission
func (m *PermissionModel) ToDomain() *identity.Permission {
	return &identity.Permission{
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// PermissionModelFromDomain creates a persistence model from a domain Permission
func PermissionModelFromDomain(p *identity.Permission) *PermissionModel {
	return &PermissionModel{
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

// RoleModel is the persistence model for the Role aggregate
type RoleModel struct {
	AggregateModel
	Name        string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string                `gorm:"type:text;not null;default:''"`
	Permissions []RolePermissionModel `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role.
// Permission references come from the preloaded Permissions association.
func (m *RoleModel) ToDomain() *identity.Role {
	perms := make([]string, 0, len(m.Permissions))
	for _, p := range m.Permissions {
		perms = append(perms, p.PermissionName)
	}
	return &identity.Role{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Permissions:       perms,
	}
}

// RoleModelFromDomain creates a persistence model from a domain Role,
// without the permission rows.
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{
		Name:        r.Name,
		Description: r.Description,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// RolePermissionModels builds the reference rows for a role.
// There is no foreign key to permissions: references may dangle.
func RolePermissionModels(r *identity.Role) []RolePermissionModel {
	now := time.Now()
	rows := make([]RolePermissionModel, 0, len(r.Permissions))
	for _, name := range r.Permissions {
		rows = append(rows, RolePermissionModel{
			RoleID:         r.ID,
			PermissionName: name,
			CreatedAt:      now,
		})
	}
	return rows
}

// RolePermissionModel links a role to a permission name
type RolePermissionModel struct {
	RoleID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionName string    `gorm:"type:varchar(100);primaryKey"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Email         string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName   string     `gorm:"type:varchar(200);not null;default:''"`
	PasswordHash  string     `gorm:"type:varchar(255);not null"`
	RoleID        *uuid.UUID `gorm:"type:uuid;index"`
	RefreshToken  string     `gorm:"type:text;not null;default:''"`
	EmailVerified bool       `gorm:"not null;default:false"`
	LastLoginAt   *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		RoleID:            m.RoleID,
		RefreshToken:      m.RefreshToken,
		EmailVerified:     m.EmailVerified,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PasswordHash:  u.PasswordHash,
		RoleID:        u.RoleID,
		RefreshToken:  u.RefreshToken,
		EmailVerified: u.EmailVerified,
		LastLoginAt:   u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// All returns every model managed by the identity schema, for AutoMigrate
func All() []any {
	return []any{&PermissionModel{}, &RoleModel{}, &RolePermissionModel{}, &UserModel{}}
}
