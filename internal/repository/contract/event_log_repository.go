package contract

import (
	"context"

	"realtime-chat-be/internal/model"
)

type EventLogRepository interface {
	Create(ctx context.Context, log *model.EventLog) error
}
