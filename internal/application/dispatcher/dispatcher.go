// Package dispatcher routes domain events to their registered handlers
// synchronously, inside the publishing transaction. The handler table
// is built once at startup; ordering within an event type is the
// registration order.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/application/port"
	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
)

// Dispatcher routes events to registered handlers
type Dispatcher interface {
	port.EventPublisher

	// Subscribe registers a named handler for an event type. Handlers
	// fire in registration order.
	Subscribe(eventType event.Type, name string, handler Handler)

	// Handlers returns registered handler metadata for an event type
	Handlers(eventType event.Type) []HandlerInfo
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	logger   *zap.Logger
}

// New creates a new event dispatcher
func New(logger *zap.Logger) Dispatcher {
	return &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
		logger:   logger,
	}
}

// Subscribe registers a named handler for an event type
func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})

	d.logger.Info("Handler registered",
		zap.String("event_type", eventType.String()),
		zap.String("handler_name", name))
}

// Publish delivers the event to every registered handler, in
// registration order, on the caller's goroutine. The first handler
// error aborts delivery and propagates, rolling back the ambient
// transaction along with the triggering write.
func (d *eventDispatcher) Publish(ctx context.Context, evt *event.Event) error {
	d.mu.RLock()
	handlers := d.handlers[evt.Type]
	d.mu.RUnlock()

	d.logger.Debug("Dispatching event",
		zap.String("event_type", evt.Type.String()),
		zap.String("event_id", evt.ID),
		zap.String("correlation_id", evt.CorrelationID),
		zap.Int("handler_count", len(handlers)))

	for _, info := range handlers {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.logger.Error("Handler failed",
				zap.String("event_type", evt.Type.String()),
				zap.String("event_id", evt.ID),
				zap.String("handler_name", info.Name),
				zap.Error(err))
			return fmt.Errorf("handler %s: %w", info.Name, err)
		}
	}

	return nil
}

// Handlers returns registered handler metadata for an event type
func (d *eventDispatcher) Handlers(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	handlers := d.handlers[eventType]
	result := make([]HandlerInfo, len(handlers))
	for i, h := range handlers {
		result[i] = HandlerInfo{Name: h.Name, EventType: h.EventType}
	}
	return result
}

// safeExecute runs a handler with panic recovery; a panic surfaces as
// an error so the ambient transaction still rolls back cleanly.
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.logger.Error("Handler panic recovered",
				zap.String("event_type", evt.Type.String()),
				zap.String("handler_name", info.Name),
				zap.Any("panic", r))
		}
	}()

	return info.Handler(ctx, evt)
}
