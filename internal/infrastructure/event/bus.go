package event

import (
	"context"
	"fmt"

	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Bus delivers domain events to subscribers synchronously, in publish order,
// on the caller's goroutine. A subscriber that fails or panics is logged and
// skipped; Publish itself never fails because of one.
type Bus struct {
	registry *HandlerRegistry
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{registry: NewHandlerRegistry(), log: log.Named("event_bus")}
}

func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		b.deliver(ctx, e)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, e shared.DomainEvent) {
	ctx, span := telemetry.StartSpan(ctx, "event.publish",
		telemetry.KeyEventType.String(e.EventType()),
		telemetry.KeyAggregateType.String(e.AggregateType()),
	)
	defer span.End()

	for _, h := range b.registry.GetHandlers(e.EventType()) {
		err := invoke(ctx, h, e)
		if err == nil {
			continue
		}
		telemetry.RecordError(span, err)
		b.log.Error("event handler failed",
			zap.String("event_type", e.EventType()),
			zap.Stringer("event_id", e.EventID()),
			zap.Stringer("aggregate_id", e.AggregateID()),
			zap.Error(err),
		)
	}
}

// invoke turns a handler panic into an error.
func invoke(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %T: %v", h, r)
		}
	}()
	return h.Handle(ctx, e)
}

// Subscribe registers h for eventTypes, falling back to h.EventTypes() when
// none are passed. A handler that ends up with no types receives everything.
func (b *Bus) Subscribe(h shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = h.EventTypes()
	}
	b.registry.Register(h, eventTypes...)
	b.log.Debug("subscribed", zap.Strings("event_types", eventTypes))
}

func (b *Bus) Unsubscribe(h shared.EventHandler) {
	b.registry.Unregister(h)
}

// Start and Stop only log; there is no queue behind the bus.
func (b *Bus) Start(context.Context) error {
	b.log.Info("event bus ready", zap.Int("subscribers", len(b.registry.GetAllHandlers())))
	return nil
}

func (b *Bus) Stop(context.Context) error {
	b.log.Info("event bus closed")
	return nil
}

// Recorder is an aggregate that buffers the events it raised.
type Recorder interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// PublishAndClear hands the buffered events of agg to p. The buffer is
// emptied even when publishing fails, so a retry cannot publish twice.
func PublishAndClear(ctx context.Context, p shared.EventPublisher, agg Recorder) error {
	pending := agg.GetDomainEvents()
	if len(pending) == 0 {
		return nil
	}
	defer agg.ClearDomainEvents()
	return p.Publish(ctx, pending...)
}

var _ shared.EventBus = (*Bus)(nil)
