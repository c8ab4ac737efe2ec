package queue

import (
	"context"
	"time"

	"github.com/poiesic/groundit/core"
)

// Lease identifies one delivery of a message. It must be presented back to
// Ack or Nack; a lease whose visibility window has lapsed is no longer valid.
type Lease struct {
	// Token is unique per delivery. A redelivered message carries a new token,
	// so a stale consumer at lease expiry cannot ack the newer delivery.
	Token uint64

	// MessageID identifies the queued message the lease covers.
	MessageID uint64

	// ExpiresAt is when the message becomes receivable again.
	ExpiresAt time.Time
}

// IngestionQueue is a durable at-least-once message channel with a terminal
// dead-letter queue. Implementations must be thread-safe.
type IngestionQueue interface {
	// Publish appends one message to the queue.
	Publish(ctx context.Context, msg *core.IngestionMessage) error

	// Receive leases the oldest visible message. The returned message's
	// DeliveryAttempt reflects this delivery. Messages whose attempts already
	// reached the configured ceiling are moved to the dead-letter queue
	// during the sweep instead of being returned.
	// Returns ErrNoMessages when nothing is receivable.
	Receive(ctx context.Context) (*core.IngestionMessage, Lease, error)

	// Ack removes the leased message from the queue. Must be called only
	// after the work the message triggered is durably committed.
	// Returns ErrUnknownLease if the lease is stale.
	Ack(ctx context.Context, lease Lease) error

	// Nack makes the leased message immediately receivable again without
	// waiting for the lease to lapse. The delivery still counts against the
	// attempt ceiling. Returns ErrUnknownLease if the lease is stale.
	Nack(ctx context.Context, lease Lease) error

	// Depth reports the number of messages in the primary queue,
	// leased or not.
	Depth(ctx context.Context) (int, error)

	// DeadLetters lists the messages routed to the dead-letter queue,
	// oldest first.
	DeadLetters(ctx context.Context) ([]*core.IngestionMessage, error)

	// Close releases resources held by the queue.
	Close() error
}
