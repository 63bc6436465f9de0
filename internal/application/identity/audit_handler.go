package identity

import (
	"context"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per identity event.
// It subscribes to every event type.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new audit log handler
func NewAuditLogHandler(log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: log.Named("audit")}
}

// EventTypes returns nil so the handler receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event with the request and actor it happened under
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if actor := logger.GetUserID(ctx); actor != "" {
		fields = append(fields, zap.String("actor_id", actor))
	}

	switch e := event.(type) {
	case *identity.RoleCreatedEvent:
		fields = append(fields, zap.String("role", e.Name), zap.Strings("permissions", e.Permissions))
	case *identity.RoleUpdatedEvent:
		fields = append(fields, zap.String("role", e.Name), zap.Strings("permissions", e.Permissions))
	case *identity.RoleDeletedEvent:
		fields = append(fields, zap.String("role", e.Name))
	case *identity.PermissionCreatedEvent:
		fields = append(fields, zap.String("permission", e.Name))
	case *identity.PermissionDeletedEvent:
		fields = append(fields, zap.String("permission", e.Name))
	case *identity.UserCreatedEvent:
		fields = append(fields, zap.String("email", e.Email))
	case *identity.UserRoleAssignedEvent:
		fields = append(fields, zap.String("role_id", e.RoleID.String()))
	case *identity.UserLoggedInEvent:
		fields = append(fields, zap.String("email", e.Email))
	}

	h.logger.Info("audit", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
