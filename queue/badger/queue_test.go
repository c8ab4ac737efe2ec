package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/groundit/core"
	"github.com/poiesic/groundit/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T, opts ...Option) *Queue {
	q, backend, err := NewMemoryQueue(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		q.Close()
		backend.Close()
	})
	return q
}

func testMessage(key string) *core.IngestionMessage {
	return &core.IngestionMessage{
		Bucket:      "materials",
		DocumentKey: key,
		EventTime:   time.Now().UTC().Add(-time.Second),
	}
}

func TestPublishReceiveAck(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("manual.pdf")))

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	msg, lease, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "manual.pdf", msg.DocumentKey)
	assert.Equal(t, 1, msg.DeliveryAttempt)
	assert.NotZero(t, lease.Token)

	require.NoError(t, q.Ack(ctx, lease))

	depth, err = q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	_, _, err = q.Receive(ctx)
	assert.ErrorIs(t, err, queue.ErrNoMessages)
}

func TestReceiveOrderAndLeaseHiding(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("first.pdf")))
	require.NoError(t, q.Publish(ctx, testMessage("second.pdf")))

	msg1, _, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", msg1.DocumentKey)

	// first.pdf is leased, so the next receive skips to second.pdf.
	msg2, _, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second.pdf", msg2.DocumentKey)

	_, _, err = q.Receive(ctx)
	assert.ErrorIs(t, err, queue.ErrNoMessages)
}

func TestNackMakesReceivable(t *testing.T) {
	q := setupQueue(t, WithMaxDeliveryAttempts(2))
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("doc.txt")))

	msg, lease, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.DeliveryAttempt)

	require.NoError(t, q.Nack(ctx, lease))

	msg, _, err = q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, msg.DeliveryAttempt)
}

func TestLeaseExpiryDeadLetters(t *testing.T) {
	// Delivery-attempt ceiling 1: a message that fails once is never handed
	// to a consumer again. The expiry sweep routes it to the DLQ.
	q := setupQueue(t, WithLeaseDuration(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("broken.pdf")))

	_, _, err := q.Receive(ctx)
	require.NoError(t, err)

	// Consumer fails: no ack. Wait for the lease to lapse.
	time.Sleep(30 * time.Millisecond)

	_, _, err = q.Receive(ctx)
	assert.ErrorIs(t, err, queue.ErrNoMessages)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "broken.pdf", dead[0].DocumentKey)
	assert.Equal(t, 1, dead[0].DeliveryAttempt)

	// Dead-lettering is idempotent: further sweeps change nothing.
	_, _, err = q.Receive(ctx)
	assert.ErrorIs(t, err, queue.ErrNoMessages)
	dead, err = q.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}

func TestHigherCeilingRedelivers(t *testing.T) {
	q := setupQueue(t, WithMaxDeliveryAttempts(2), WithLeaseDuration(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("retry.pdf")))

	msg, _, err := q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.DeliveryAttempt)

	time.Sleep(30 * time.Millisecond)

	msg, _, err = q.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, msg.DeliveryAttempt)

	time.Sleep(30 * time.Millisecond)

	_, _, err = q.Receive(ctx)
	assert.ErrorIs(t, err, queue.ErrNoMessages)

	dead, err := q.DeadLetters(ctx)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}

func TestStaleLease(t *testing.T) {
	q := setupQueue(t, WithMaxDeliveryAttempts(2), WithLeaseDuration(10*time.Millisecond))
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, testMessage("slow.pdf")))

	_, staleLease, err := q.Receive(ctx)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	// Redelivered under a fresh token; the old lease must not ack it.
	_, freshLease, err := q.Receive(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, q.Ack(ctx, staleLease), queue.ErrUnknownLease)
	assert.NoError(t, q.Ack(ctx, freshLease))
}

func TestAckUnknownMessage(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	err := q.Ack(ctx, queue.Lease{Token: 42, MessageID: 99})
	assert.ErrorIs(t, err, queue.ErrUnknownLease)
}

func TestPublishValidates(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	err := q.Publish(ctx, &core.IngestionMessage{EventTime: time.Now()})
	assert.ErrorIs(t, err, core.ErrInvalidMessage)
}
