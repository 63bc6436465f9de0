package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps every stored record carries.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BaseAggregateRoot adds an optimistic locking version and the events raised
// since the aggregate was loaded. Pending events are not persisted; the
// application layer publishes them after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version int

	pending []DomainEvent
}

// NewBaseAggregateRoot starts a fresh aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now()
	return BaseAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Version:    1,
	}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

func (a *BaseAggregateRoot) AddDomainEvent(e DomainEvent) {
	a.pending = append(a.pending, e)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
