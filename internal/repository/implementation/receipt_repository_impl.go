package implementation

import (
	"context"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReceiptRepositoryImpl struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) contract.ReceiptRepository {
	return &ReceiptRepositoryImpl{db: db}
}

func (r *ReceiptRepositoryImpl) InsertDelivery(ctx context.Context, messageId int64, userId string) (bool, error) {
	m := model.MessageDelivery{MessageId: messageId, UserId: userId}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReceiptRepositoryImpl) InsertRead(ctx context.Context, messageId int64, userId string) (bool, error) {
	m := model.MessageRead{MessageId: messageId, UserId: userId}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&m)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReceiptRepositoryImpl) ListDeliveredTo(ctx context.Context, messageId int64) ([]string, error) {
	var userIds []string
	err := r.db.WithContext(ctx).Model(&model.MessageDelivery{}).
		Where("message_id = ?", messageId).
		Order("created_at ASC").
		Pluck("user_id", &userIds).Error
	if err != nil {
		return nil, err
	}
	return userIds, nil
}

func (r *ReceiptRepositoryImpl) ListReadBy(ctx context.Context, messageId int64) ([]string, error) {
	var userIds []string
	err := r.db.WithContext(ctx).Model(&model.MessageRead{}).
		Where("message_id = ?", messageId).
		Order("created_at ASC").
		Pluck("user_id", &userIds).Error
	if err != nil {
		return nil, err
	}
	return userIds, nil
}

func (r *ReceiptRepositoryImpl) ListDeliveredToForMessages(ctx context.Context, messageIds []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(messageIds))
	if len(messageIds) == 0 {
		return out, nil
	}
	var rows []model.MessageDelivery
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIds).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MessageId] = append(out[row.MessageId], row.UserId)
	}
	return out, nil
}

func (r *ReceiptRepositoryImpl) ListReadByForMessages(ctx context.Context, messageIds []int64) (map[int64][]string, error) {
	out := make(map[int64][]string, len(messageIds))
	if len(messageIds) == 0 {
		return out, nil
	}
	var rows []model.MessageRead
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIds).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.MessageId] = append(out[row.MessageId], row.UserId)
	}
	return out, nil
}
