package implementation

import (
	"context"
	"errors"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewRoomRepository(db *gorm.DB) contract.RoomRepository {
	return &RoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *RoomRepositoryImpl) GetOrCreate(ctx context.Context, name string) (*entity.Room, error) {
	m := model.Room{Name: name}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&m).Error
	if err != nil {
		return nil, err
	}
	// On conflict the insert returns no row; read it back either way.
	return r.FindByName(ctx, name)
}

func (r *RoomRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.Room, error) {
	var m model.Room
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RoomToEntity(&m), nil
}

func (r *RoomRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Room, error) {
	var models []*model.Room
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	rooms := make([]*entity.Room, len(models))
	for i, m := range models {
		rooms[i] = r.mapper.RoomToEntity(m)
	}
	return rooms, nil
}
