package implementation

import (
	"context"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type EventLogRepositoryImpl struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) contract.EventLogRepository {
	return &EventLogRepositoryImpl{db: db}
}

func (r *EventLogRepositoryImpl) Create(ctx context.Context, log *model.EventLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
