package identity

import (
	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated      = "UserCreated"
	EventTypeUserRoleAssigned = "UserRoleAssigned"
	EventTypeUserLoggedIn     = "UserLoggedIn"
	EventTypeUserLoggedOut    = "UserLoggedOut"
)

// UserCreatedEvent is published when a new user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// UserRoleAssignedEvent is published when a user's role reference changes
type UserRoleAssignedEvent struct {
	shared.BaseDomainEvent
	RoleID uuid.UUID `json:"role_id"`
}

// NewUserRoleAssignedEvent creates a new UserRoleAssignedEvent
func NewUserRoleAssignedEvent(user *User) *UserRoleAssignedEvent {
	var roleID uuid.UUID
	if user.RoleID != nil {
		roleID = *user.RoleID
	}
	return &UserRoleAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleAssigned, AggregateTypeUser, user.ID),
		RoleID:          roleID,
	}
}

// UserLoggedInEvent is published after a successful password login
type UserLoggedInEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserLoggedInEvent creates a new UserLoggedInEvent
func NewUserLoggedInEvent(user *User) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLoggedIn, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// UserLoggedOutEvent is published when a user's refresh token is revoked
type UserLoggedOutEvent struct {
	shared.BaseDomainEvent
}

// NewUserLoggedOutEvent creates a new UserLoggedOutEvent
func NewUserLoggedOutEvent(userID uuid.UUID) *UserLoggedOutEvent {
	return &UserLoggedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLoggedOut, AggregateTypeUser, userID),
	}
}
