package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// AggregateModel holds the columns shared by every aggregate table.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	*m = AggregateModel{ID: a.ID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt, Version: a.Version}
}

// ToDomainAggregateRoot rebuilds the aggregate base. Loaded aggregates have no pending events.
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	var a shared.BaseAggregateRoot
	a.ID, a.CreatedAt, a.UpdatedAt, a.Version = m.ID, m.CreatedAt, m.UpdatedAt, m.Version
	return a
}
