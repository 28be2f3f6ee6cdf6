package contract

import (
	"context"
)

// ReceiptRepository persists delivery/read acknowledgement facts. Inserts are
// conflict-free: inserting an existing (message, user) pair reports inserted
// == false instead of erroring.
type ReceiptRepository interface {
	InsertDelivery(ctx context.Context, messageId int64, userId string) (inserted bool, err error)
	InsertRead(ctx context.Context, messageId int64, userId string) (inserted bool, err error)
	ListDeliveredTo(ctx context.Context, messageId int64) ([]string, error)
	ListReadBy(ctx context.Context, messageId int64) ([]string, error)
	ListDeliveredToForMessages(ctx context.Context, messageIds []int64) (map[int64][]string, error)
	ListReadByForMessages(ctx context.Context, messageIds []int64) (map[int64][]string, error)
}
