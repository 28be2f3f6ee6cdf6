package implementation

import (
	"context"
	"errors"
	"time"

	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/mapper"
	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindById(ctx context.Context, id int64) (*entity.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	messages := make([]*entity.Message, len(models))
	for i, m := range models {
		messages[i] = r.mapper.MessageToEntity(m)
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Message{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *MessageRepositoryImpl) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *MessageRepositoryImpl) Edit(ctx context.Context, id int64, newText string, editedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":      newText,
			"edited_at": editedAt,
		}).Error
}

func (r *MessageRepositoryImpl) AppendEditHistory(ctx context.Context, edit *entity.MessageEdit) error {
	m := &model.MessageEdit{
		MessageId: edit.MessageId,
		OldText:   edit.OldText,
		EditedAt:  edit.EditedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*edit = *r.mapper.MessageEditToEntity(m)
	return nil
}

func (r *MessageRepositoryImpl) FindEditHistory(ctx context.Context, messageId int64) ([]*entity.MessageEdit, error) {
	var models []*model.MessageEdit
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageId).
		Order("edited_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	edits := make([]*entity.MessageEdit, len(models))
	for i, m := range models {
		edits[i] = r.mapper.MessageEditToEntity(m)
	}
	return edits, nil
}

func (r *MessageRepositoryImpl) CountUnreadInRoom(ctx context.Context, room string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("room = ? AND is_deleted = ?", room, false).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id)").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
