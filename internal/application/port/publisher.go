package port

import (
	"context"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
)

// EventPublisher delivers a domain event to its registered handlers.
// Publish is called from inside an active transaction scope and runs
// every handler synchronously before that scope commits; a handler
// error aborts the whole transaction, trigger included.
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event) error
}
