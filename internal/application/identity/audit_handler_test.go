package identity

import (
	"context"
	"testing"

	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogHandler_EventTypes(t *testing.T) {
	assert.Empty(t, NewAuditLogHandler(zap.NewNop()).EventTypes())
}

func TestAuditLogHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core))

	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-1")
	ctx, _ = logger.WithUser(ctx, zap.NewNop(), "actor-1", "Admin")

	role := newStoredRole(t, "Viewer", "product:read")
	role.MarkDeleted()
	require.NoError(t, handler.Handle(ctx, role.GetDomainEvents()[0]))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, identity.EventTypeRoleDeleted, fields["event_type"])
	assert.Equal(t, "Viewer", fields["role"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "actor-1", fields["actor_id"])
	assert.Equal(t, role.ID.String(), fields["aggregate_id"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}
