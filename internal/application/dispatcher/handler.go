package dispatcher

import (
	"context"

	"github.com/donghwunline/wellkorea-erp-sub009/internal/domain/event"
)

// Handler processes domain events. Handlers run synchronously inside
// the publisher's transaction: returning an error rolls back the
// trigger together with any handler writes. A handler whose
// precondition no longer holds must log and return nil; that is an
// absorbed race, not a failure.
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
