package event

import (
	"slices"
	"sync"

	"github.com/shopadmin/backoffice/internal/domain/shared"
)

// HandlerRegistry maps event types to handlers. Handlers registered without
// types receive every event. Registering the same handler twice for a type is
// a no-op, so a handler never sees one event twice.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]shared.EventHandler)}
}

// Register adds a handler for the given event types, or for all events when none are given
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = appendUnique(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.handlers[eventType] = appendUnique(r.handlers[eventType], handler)
	}
}

// Unregister removes a handler from every registration
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = slices.DeleteFunc(r.wildcard, func(h shared.EventHandler) bool { return h == handler })
	for eventType, hs := range r.handlers {
		hs = slices.DeleteFunc(hs, func(h shared.EventHandler) bool { return h == handler })
		if len(hs) == 0 {
			delete(r.handlers, eventType)
			continue
		}
		r.handlers[eventType] = hs
	}
}

// GetHandlers returns the type-specific handlers followed by wildcard handlers.
// A handler registered both ways is returned once.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := slices.Clone(r.handlers[eventType])
	for _, h := range r.wildcard {
		result = appendUnique(result, h)
	}
	return result
}

// GetAllHandlers returns every distinct registered handler
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := slices.Clone(r.wildcard)
	for _, hs := range r.handlers {
		for _, h := range hs {
			result = appendUnique(result, h)
		}
	}
	return result
}

func appendUnique(handlers []shared.EventHandler, handler shared.EventHandler) []shared.EventHandler {
	if slices.Contains(handlers, handler) {
		return handlers
	}
	return append(handlers, handler)
}
