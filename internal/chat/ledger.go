package chat

import (
	"context"
)

const ledgerStripes = 64

// Ledger maintains per-message delivery/read acknowledgement state on top of
// the receipt store. It is the only writer of receipt state.
//
// Every mutation runs under a per-message stripe lock so two concurrent
// acknowledgements for the same message serialize their check-then-insert
// sequence; the store's conflict-free inserts make the operations idempotent
// even across processes.
type Ledger struct {
	messages MessageStore
	receipts ReceiptStore
	locks    [ledgerStripes]chanLock
}

// chanLock is a channel-based mutex so lock acquisition can observe context
// cancellation.
type chanLock chan struct{}

func NewLedger(messages MessageStore, receipts ReceiptStore) *Ledger {
	l := &Ledger{
		messages: messages,
		receipts: receipts,
	}
	for i := range l.locks {
		l.locks[i] = make(chanLock, 1)
	}
	return l
}

func (l *Ledger) lock(ctx context.Context, messageId int64) (unlock func(), err error) {
	stripe := l.locks[uint64(messageId)%ledgerStripes]
	select {
	case stripe <- struct{}{}:
		return func() { <-stripe }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DeliveryResult is the updated delivered-to set after a recorded delivery.
type DeliveryResult struct {
	MessageId   int64
	DeliveredTo []string
}

// ReadResult is the updated read-by set after a recorded read.
type ReadResult struct {
	MessageId int64
	ReadBy    []string
}

// RecordDelivery inserts a delivery receipt for (messageId, recipient). It
// returns (nil, nil) when the message is unknown, soft-deleted, or not in the
// acknowledger's room, or when the recipient authored it. Duplicate
// acknowledgements are no-ops that still return the current set.
func (l *Ledger) RecordDelivery(ctx context.Context, messageId int64, recipientId, room string) (*DeliveryResult, error) {
	msg, err := l.messages.GetMessage(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.Deleted || msg.Room != room || msg.AuthorId == recipientId {
		return nil, nil
	}

	unlock, err := l.lock(ctx, messageId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := l.receipts.InsertDelivery(ctx, messageId, recipientId); err != nil {
		return nil, err
	}
	deliveredTo, err := l.receipts.ListDeliveredTo(ctx, messageId)
	if err != nil {
		return nil, err
	}
	return &DeliveryResult{MessageId: messageId, DeliveredTo: deliveredTo}, nil
}

// RecordRead inserts a read receipt for (messageId, recipient), inserting the
// implied delivery receipt first so "read implies delivered" always holds.
// Rejection and idempotence semantics match RecordDelivery.
func (l *Ledger) RecordRead(ctx context.Context, messageId int64, recipientId, room string) (*ReadResult, error) {
	msg, err := l.messages.GetMessage(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.Deleted || msg.Room != room || msg.AuthorId == recipientId {
		return nil, nil
	}

	unlock, err := l.lock(ctx, messageId)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := l.receipts.InsertDelivery(ctx, messageId, recipientId); err != nil {
		return nil, err
	}
	if _, err := l.receipts.InsertRead(ctx, messageId, recipientId); err != nil {
		return nil, err
	}
	readBy, err := l.receipts.ListReadBy(ctx, messageId)
	if err != nil {
		return nil, err
	}
	return &ReadResult{MessageId: messageId, ReadBy: readBy}, nil
}

// MarkAllRead inserts a read receipt (and the implied delivery) from acting
// user for every undeleted room message authored by someone else that they
// have not read yet. Returns only the newly affected message ids, oldest
// first; already-read messages are excluded so the caller can broadcast
// exactly what changed.
func (l *Ledger) MarkAllRead(ctx context.Context, room, actingUserId string) ([]int64, error) {
	msgs, err := l.messages.ListByRoom(ctx, room, 0, 0)
	if err != nil {
		return nil, err
	}

	var affected []int64
	for _, msg := range msgs {
		if msg.AuthorId == actingUserId {
			continue
		}

		unlock, err := l.lock(ctx, msg.Id)
		if err != nil {
			return affected, err
		}
		_, err = l.receipts.InsertDelivery(ctx, msg.Id, actingUserId)
		var inserted bool
		if err == nil {
			inserted, err = l.receipts.InsertRead(ctx, msg.Id, actingUserId)
		}
		unlock()

		if err != nil {
			return affected, err
		}
		if inserted {
			affected = append(affected, msg.Id)
		}
	}
	return affected, nil
}

// RoomStats reports the room-wide aggregate: total undeleted messages and how
// many have zero read receipts from anyone.
func (l *Ledger) RoomStats(ctx context.Context, room string) (RoomStats, error) {
	return l.messages.RoomStats(ctx, room)
}
