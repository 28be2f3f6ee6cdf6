package contract

import (
	"context"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/specification"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindById(ctx context.Context, id int64) (*entity.Message, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
	Edit(ctx context.Context, id int64, newText string, editedAt time.Time) error
	AppendEditHistory(ctx context.Context, edit *entity.MessageEdit) error
	FindEditHistory(ctx context.Context, messageId int64) ([]*entity.MessageEdit, error)

	// CountUnreadInRoom counts undeleted room messages with zero read
	// receipts from anyone. This is the room-wide unread measure.
	CountUnreadInRoom(ctx context.Context, room string) (int64, error)
}
