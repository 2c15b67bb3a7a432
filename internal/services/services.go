// Package services holds the application layer: validation, cross-entity
// rules like the automatic limit lifecycle, and event publication. Storage
// details stay behind store.Store; transport details stay in the handlers.
package services

import (
	"context"

	"bilancio/internal/amqp"
)

// EventPublisher pushes a budget event to the bus. *amqp.Client satisfies
// it; a nil publisher disables events entirely.
type EventPublisher interface {
	PublishEvent(ctx context.Context, kind amqp.EventKind, id int64) error
}
