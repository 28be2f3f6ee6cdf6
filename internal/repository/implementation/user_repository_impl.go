package implementation

import (
	"context"
	"errors"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.UserToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.UserToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	m := r.mapper.UserToModel(user)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.UserToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var m model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserToEntity(&m), nil
}

func (r *UserRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepositoryImpl) FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	return r.findOne(ctx, "username = ? OR email = ?", identifier, identifier)
}

func (r *UserRepositoryImpl) SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": lastSeen,
		}).Error
}

func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("last_login", at).Error
}
