package contract

import (
	"context"
	"time"

	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error)
	SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
