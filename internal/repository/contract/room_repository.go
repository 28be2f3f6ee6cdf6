package contract

import (
	"context"

	"realtime-chat-be/internal/entity"
)

type RoomRepository interface {
	GetOrCreate(ctx context.Context, name string) (*entity.Room, error)
	FindByName(ctx context.Context, name string) (*entity.Room, error)
	FindAll(ctx context.Context) ([]*entity.Room, error)
}
