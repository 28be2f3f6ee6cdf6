package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, *fakeMessageStore, *fakeReceiptStore) {
	t.Helper()
	receipts := newFakeReceiptStore()
	messages := newFakeMessageStore(receipts)
	return NewLedger(messages, receipts), messages, receipts
}

func TestLedgerRecordDelivery(t *testing.T) {
	ctx := context.Background()
	ledger, messages, _ := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	res, err := ledger.RecordDelivery(ctx, msg.Id, "bob", "general")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, msg.Id, res.MessageId)
	assert.Equal(t, []string{"bob"}, res.DeliveredTo)
}

func TestLedgerRecordDeliveryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger, messages, _ := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	_, err = ledger.RecordDelivery(ctx, msg.Id, "bob", "general")
	require.NoError(t, err)
	res, err := ledger.RecordDelivery(ctx, msg.Id, "bob", "general")
	require.NoError(t, err)

	require.NotNil(t, res)
	assert.Equal(t, []string{"bob"}, res.DeliveredTo)
}

func TestLedgerRejectsSelfReceipts(t *testing.T) {
	ctx := context.Background()
	ledger, messages, receipts := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	res, err := ledger.RecordDelivery(ctx, msg.Id, "alice", "general")
	require.NoError(t, err)
	assert.Nil(t, res)

	readRes, err := ledger.RecordRead(ctx, msg.Id, "alice", "general")
	require.NoError(t, err)
	assert.Nil(t, readRes)

	assert.Empty(t, receipts.deliveredTo(msg.Id))
	assert.Empty(t, receipts.readBy(msg.Id))
}

func TestLedgerRejectsUnknownAndDeletedMessages(t *testing.T) {
	ctx := context.Background()
	ledger, messages, _ := newTestLedger(t)

	res, err := ledger.RecordDelivery(ctx, 999, "bob", "general")
	require.NoError(t, err)
	assert.Nil(t, res)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)
	require.NoError(t, messages.SoftDelete(ctx, msg.Id))

	readRes, err := ledger.RecordRead(ctx, msg.Id, "bob", "general")
	require.NoError(t, err)
	assert.Nil(t, readRes)
}

func TestLedgerRejectsAcksFromAnotherRoom(t *testing.T) {
	ctx := context.Background()
	ledger, messages, receipts := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	// A session bound to another room cannot acknowledge this message.
	res, err := ledger.RecordDelivery(ctx, msg.Id, "bob", "random")
	require.NoError(t, err)
	assert.Nil(t, res)

	readRes, err := ledger.RecordRead(ctx, msg.Id, "bob", "random")
	require.NoError(t, err)
	assert.Nil(t, readRes)

	assert.Empty(t, receipts.deliveredTo(msg.Id))
	assert.Empty(t, receipts.readBy(msg.Id))
}

func TestLedgerReadImpliesDelivered(t *testing.T) {
	ctx := context.Background()
	ledger, messages, receipts := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	res, err := ledger.RecordRead(ctx, msg.Id, "bob", "general")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []string{"bob"}, res.ReadBy)

	// The implied delivery receipt exists even though it was never sent.
	assert.Equal(t, []string{"bob"}, receipts.deliveredTo(msg.Id))
}

func TestLedgerMarkAllRead(t *testing.T) {
	ctx := context.Background()
	ledger, messages, receipts := newTestLedger(t)

	m1, err := messages.CreateMessage(ctx, "general", "alice", "one")
	require.NoError(t, err)
	m2, err := messages.CreateMessage(ctx, "general", "bob", "two")
	require.NoError(t, err)
	m3, err := messages.CreateMessage(ctx, "general", "alice", "three")
	require.NoError(t, err)
	_, err = messages.CreateMessage(ctx, "random", "alice", "elsewhere")
	require.NoError(t, err)

	// bob already read m1.
	_, err = ledger.RecordRead(ctx, m1.Id, "bob", "general")
	require.NoError(t, err)

	affected, err := ledger.MarkAllRead(ctx, "general", "bob")
	require.NoError(t, err)

	// Only m3 is newly affected: m1 was already read, m2 is bob's own.
	assert.Equal(t, []int64{m3.Id}, affected)
	assert.Equal(t, []string{"bob"}, receipts.readBy(m3.Id))
	assert.Empty(t, receipts.readBy(m2.Id))
	assert.Equal(t, []string{"bob"}, receipts.deliveredTo(m3.Id))
}

func TestLedgerMarkAllReadSkipsDeleted(t *testing.T) {
	ctx := context.Background()
	ledger, messages, _ := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "gone")
	require.NoError(t, err)
	require.NoError(t, messages.SoftDelete(ctx, msg.Id))

	affected, err := ledger.MarkAllRead(ctx, "general", "bob")
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func TestLedgerRoomStats(t *testing.T) {
	ctx := context.Background()
	ledger, messages, _ := newTestLedger(t)

	m1, err := messages.CreateMessage(ctx, "general", "alice", "one")
	require.NoError(t, err)
	_, err = messages.CreateMessage(ctx, "general", "alice", "two")
	require.NoError(t, err)
	deleted, err := messages.CreateMessage(ctx, "general", "alice", "three")
	require.NoError(t, err)
	require.NoError(t, messages.SoftDelete(ctx, deleted.Id))

	_, err = ledger.RecordRead(ctx, m1.Id, "bob", "general")
	require.NoError(t, err)

	stats, err := ledger.RoomStats(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalMessages)
	assert.Equal(t, int64(1), stats.UnreadCount)
}

func TestLedgerConcurrentAcknowledgements(t *testing.T) {
	ctx := context.Background()
	ledger, messages, receipts := newTestLedger(t)

	msg, err := messages.CreateMessage(ctx, "general", "alice", "hello")
	require.NoError(t, err)

	var wg sync.WaitGroup
	readers := []string{"bob", "carol", "dave", "erin"}
	for _, reader := range readers {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(userId string) {
				defer wg.Done()
				_, err := ledger.RecordRead(ctx, msg.Id, userId, "general")
				assert.NoError(t, err)
			}(reader)
		}
	}
	wg.Wait()

	assert.Equal(t, readers, receipts.readBy(msg.Id))
	assert.Equal(t, readers, receipts.deliveredTo(msg.Id))
}

func TestLedgerCancelledContext(t *testing.T) {
	ledger, messages, _ := newTestLedger(t)

	msg, err := messages.CreateMessage(context.Background(), "general", "alice", "hello")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The stripe lock acquisition observes cancellation once the lock is held
	// elsewhere; with a free lock the fake store still succeeds, so exercise
	// the held-lock path directly.
	unlock, err := ledger.lock(context.Background(), msg.Id)
	require.NoError(t, err)
	_, err = ledger.lock(ctx, msg.Id)
	assert.ErrorIs(t, err, context.Canceled)
	unlock()
}
