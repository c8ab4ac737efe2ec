package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/queue"
	"github.com/poiesic/groundit/storage"
)

const (
	defaultMaxDeliveryAttempts = 1
	defaultLeaseDuration       = 5 * time.Minute
)

// Queue implements queue.IngestionQueue durably on BadgerDB.
//
// Every message lives under a sequence-ordered key, so Receive sweeps oldest
// first. Leasing is recorded in the stored entry (visibility deadline plus a
// per-delivery token); expiry needs no timers, an expired lease simply makes
// the entry visible to the next sweep.
type Queue struct {
	backend     *Backend
	idSeq       *badger.Sequence
	tokenSeq    *badger.Sequence
	maxAttempts int
	lease       time.Duration
	logger      *slog.Logger
}

var _ queue.IngestionQueue = (*Queue)(nil)

// Option configures a Queue.
type Option func(*Queue) error

// WithMaxDeliveryAttempts sets the delivery-attempt ceiling before a message
// is dead-lettered. Default is 1: a message that fails once is never handed
// to a consumer again.
func WithMaxDeliveryAttempts(max int) Option {
	return func(q *Queue) error {
		if max < 1 {
			max = 1
		}
		q.maxAttempts = max
		return nil
	}
}

// WithLeaseDuration sets the visibility window for received messages.
// It must exceed the worst-case processing latency of the consumer.
// Default is 5 minutes.
func WithLeaseDuration(d time.Duration) Option {
	return func(q *Queue) error {
		if d <= 0 {
			return errors.New("lease duration must be positive")
		}
		q.lease = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewQueue creates a durable ingestion queue on the given backend.
func NewQueue(backend *Backend, opts ...Option) (*Queue, error) {
	idSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		return nil, err
	}
	tokenSeq, err := backend.GetSequence(leaseTokenSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	q := &Queue{
		backend:     backend,
		idSeq:       idSeq,
		tokenSeq:    tokenSeq,
		maxAttempts: defaultMaxDeliveryAttempts,
		lease:       defaultLeaseDuration,
		logger:      slog.Default().With("component", "ingestion-queue"),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			q.Close()
			return nil, err
		}
	}

	return q, nil
}

// Close releases the queue's ID sequences.
func (q *Queue) Close() error {
	if err := q.idSeq.Release(); err != nil {
		return err
	}
	return q.tokenSeq.Release()
}

// Publish appends one message to the queue.
func (q *Queue) Publish(ctx context.Context, msg *core.IngestionMessage) error {
	if q.backend.IsClosed() {
		return queue.ErrQueueClosed
	}
	if err := core.ValidateIngestionMessage(msg); err != nil {
		return err
	}

	id, err := q.nextID(q.idSeq)
	if err != nil {
		return err
	}

	e := &entry{Msg: *msg}
	e.Msg.DeliveryAttempt = 0

	err = q.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeMessageKey(id), marshalEntry(e)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	q.logger.Debug("message published", "id", id, "documentKey", msg.DocumentKey)
	return nil
}

// Receive leases the oldest visible message. Messages that already exhausted
// the delivery-attempt ceiling are moved to the dead-letter queue during the
// sweep and are never returned.
func (q *Queue) Receive(ctx context.Context) (*core.IngestionMessage, queue.Lease, error) {
	if q.backend.IsClosed() {
		return nil, queue.Lease{}, queue.ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, queue.Lease{}, err
	}

	now := time.Now().UTC()

	var delivered *core.IngestionMessage
	var lease queue.Lease

	err := q.backend.WithTx(func(tx *badger.Txn) error {
		deliverID, deliverEntry, deadLettered, err := q.sweep(tx, now)
		if err != nil {
			return err
		}

		// Persist dead-letter moves even when nothing is deliverable.
		for _, id := range deadLettered {
			q.logger.Warn("message dead-lettered",
				"id", id.id, "documentKey", id.msg.DocumentKey, "attempts", id.msg.DeliveryAttempt)
			if err := tx.Delete(makeMessageKey(id.id)); err != nil {
				return err
			}
			if err := tx.Set(makeDeadLetterKey(id.id), storage.MarshalMessage(&id.msg)); err != nil {
				return err
			}
		}

		if deliverEntry == nil {
			return tx.Commit()
		}

		token, err := q.nextID(q.tokenSeq)
		if err != nil {
			return err
		}

		deliverEntry.Msg.DeliveryAttempt++
		deliverEntry.Token = token
		expires := now.Add(q.lease)
		deliverEntry.VisibleAt = expires.UnixMicro()

		if err := tx.Set(makeMessageKey(deliverID), marshalEntry(deliverEntry)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		msg := deliverEntry.Msg
		delivered = &msg
		lease = queue.Lease{Token: token, MessageID: deliverID, ExpiresAt: expires}
		return nil
	}, true)
	if err != nil {
		return nil, queue.Lease{}, err
	}

	if delivered == nil {
		return nil, queue.Lease{}, queue.ErrNoMessages
	}

	q.logger.Debug("message leased",
		"id", lease.MessageID, "documentKey", delivered.DocumentKey,
		"attempt", delivered.DeliveryAttempt, "expiresAt", lease.ExpiresAt)
	return delivered, lease, nil
}

type deadLetterMove struct {
	id  uint64
	msg core.IngestionMessage
}

// sweep walks the primary queue oldest first and classifies visible entries:
// the first deliverable one (if any) and every entry due for dead-lettering.
// Iterators must be closed before the transaction mutates, so sweep only
// reads.
func (q *Queue) sweep(tx *badger.Txn, now time.Time) (uint64, *entry, []deadLetterMove, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(messagePrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var deliverID uint64
	var deliverEntry *entry
	var deadLettered []deadLetterMove

	nowMicros := now.UnixMicro()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		id := messageIDFromKey(item.Key())

		var e *entry
		err := item.Value(func(val []byte) error {
			var err error
			e, err = unmarshalEntry(val)
			return err
		})
		if err != nil {
			return 0, nil, nil, err
		}

		// Still leased by someone.
		if e.VisibleAt > nowMicros {
			continue
		}

		if e.Msg.DeliveryAttempt >= q.maxAttempts {
			deadLettered = append(deadLettered, deadLetterMove{id: id, msg: e.Msg})
			continue
		}

		if deliverEntry == nil {
			deliverID = id
			deliverEntry = e
		}
	}

	return deliverID, deliverEntry, deadLettered, nil
}

// Ack removes the leased message from the queue.
func (q *Queue) Ack(ctx context.Context, lease queue.Lease) error {
	if q.backend.IsClosed() {
		return queue.ErrQueueClosed
	}

	return q.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := q.leasedEntry(tx, lease); err != nil {
			return err
		}
		if err := tx.Delete(makeMessageKey(lease.MessageID)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		q.logger.Debug("message acked", "id", lease.MessageID)
		return nil
	}, true)
}

// Nack makes the leased message immediately receivable again.
func (q *Queue) Nack(ctx context.Context, lease queue.Lease) error {
	if q.backend.IsClosed() {
		return queue.ErrQueueClosed
	}

	return q.backend.WithTx(func(tx *badger.Txn) error {
		e, err := q.leasedEntry(tx, lease)
		if err != nil {
			return err
		}

		e.VisibleAt = 0
		e.Token = 0
		if err := tx.Set(makeMessageKey(lease.MessageID), marshalEntry(e)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		q.logger.Debug("message nacked", "id", lease.MessageID)
		return nil
	}, true)
}

// leasedEntry loads the entry covered by lease, verifying the delivery token.
func (q *Queue) leasedEntry(tx *badger.Txn, lease queue.Lease) (*entry, error) {
	item, err := tx.Get(makeMessageKey(lease.MessageID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, queue.ErrUnknownLease
		}
		return nil, err
	}

	var e *entry
	err = item.Value(func(val []byte) error {
		var err error
		e, err = unmarshalEntry(val)
		return err
	})
	if err != nil {
		return nil, err
	}

	if e.Token == 0 || e.Token != lease.Token {
		return nil, queue.ErrUnknownLease
	}
	return e, nil
}

// Depth reports the number of messages in the primary queue.
func (q *Queue) Depth(ctx context.Context) (int, error) {
	if q.backend.IsClosed() {
		return 0, queue.ErrQueueClosed
	}

	var count int
	err := q.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(messagePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeadLetters lists the dead-lettered messages, oldest first.
func (q *Queue) DeadLetters(ctx context.Context) ([]*core.IngestionMessage, error) {
	if q.backend.IsClosed() {
		return nil, queue.ErrQueueClosed
	}

	var msgs []*core.IngestionMessage
	err := q.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(deadLetterPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var msg *core.IngestionMessage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				msg, err = storage.UnmarshalMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// nextID draws the next non-zero value from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func (q *Queue) nextID(seq *badger.Sequence) (uint64, error) {
	id, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		id, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}
