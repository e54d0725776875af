// Package services implements the engine operations on top of the ledger
// store: transaction bookkeeping, period aggregation, trends, budget
// progress and the savings ledger. Writes happen first; notification events
// are published after and never fail the request.
package services

import (
	"context"

	"finledger/internal/amqp"
)

// EventPublisher sends engine notification events. A nil publisher disables
// notifications.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}
