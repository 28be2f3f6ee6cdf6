package service

import (
	"context"
	"time"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// IMessageService is the message persistence surface: the store the chat
// engine writes through, plus the REST-facing history reads.
type IMessageService interface {
	chat.MessageStore

	History(ctx context.Context, room string, limit, offset int) ([]dto.MessageResponse, error)
	EditHistory(ctx context.Context, messageId int64) ([]dto.MessageEditResponse, error)
}

type messageService struct {
	messageRepo contract.MessageRepository
	receiptRepo contract.ReceiptRepository
	userRepo    contract.UserRepository
	roomRepo    contract.RoomRepository
}

func NewMessageService(
	messageRepo contract.MessageRepository,
	receiptRepo contract.ReceiptRepository,
	userRepo contract.UserRepository,
	roomRepo contract.RoomRepository,
) IMessageService {
	return &messageService{
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
		userRepo:    userRepo,
		roomRepo:    roomRepo,
	}
}

func (s *messageService) CreateMessage(ctx context.Context, room, authorId, text string) (*chat.Message, error) {
	// Keep the rooms table in sync with rooms that exist only because
	// someone talked in them.
	if _, err := s.roomRepo.GetOrCreate(ctx, room); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		Room:      room,
		AuthorId:  authorId,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	out := s.toChatMessage(msg)
	s.hydrateAuthors(ctx, []*chat.Message{out})
	return out, nil
}

func (s *messageService) GetMessage(ctx context.Context, id int64) (*chat.Message, error) {
	msg, err := s.messageRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	out := s.toChatMessage(msg)
	if err := s.hydrateReceipts(ctx, []*chat.Message{out}); err != nil {
		return nil, err
	}
	s.hydrateAuthors(ctx, []*chat.Message{out})
	return out, nil
}

// ListByRoom returns the latest limit undeleted room messages, oldest first.
// limit <= 0 means no cap.
func (s *messageService) ListByRoom(ctx context.Context, room string, limit, offset int) ([]*chat.Message, error) {
	entities, err := s.messageRepo.FindAll(ctx,
		specification.ByRoom{Room: room},
		specification.Undeleted{},
		specification.OrderByCreation{Desc: true},
		specification.Paged{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	// Query is newest-first for the limit; clients want oldest-first.
	out := make([]*chat.Message, len(entities))
	for i, msg := range entities {
		out[len(entities)-1-i] = s.toChatMessage(msg)
	}

	if err := s.hydrateReceipts(ctx, out); err != nil {
		return nil, err
	}
	s.hydrateAuthors(ctx, out)
	return out, nil
}

func (s *messageService) SoftDelete(ctx context.Context, id int64) error {
	return s.messageRepo.SoftDelete(ctx, id)
}

func (s *messageService) EditMessage(ctx context.Context, id int64, authorId, newText string) (bool, error) {
	msg, err := s.messageRepo.FindById(ctx, id)
	if err != nil {
		return false, err
	}
	if msg == nil || msg.IsDeleted || msg.AuthorId != authorId {
		return false, nil
	}

	now := time.Now()
	if err := s.messageRepo.AppendEditHistory(ctx, &entity.MessageEdit{
		MessageId: id,
		OldText:   msg.Text,
		EditedAt:  now,
	}); err != nil {
		return false, err
	}
	if err := s.messageRepo.Edit(ctx, id, newText, now); err != nil {
		return false, err
	}
	return true, nil
}

func (s *messageService) RoomStats(ctx context.Context, room string) (chat.RoomStats, error) {
	total, err := s.messageRepo.Count(ctx,
		specification.ByRoom{Room: room},
		specification.Undeleted{},
	)
	if err != nil {
		return chat.RoomStats{}, err
	}
	unread, err := s.messageRepo.CountUnreadInRoom(ctx, room)
	if err != nil {
		return chat.RoomStats{}, err
	}
	return chat.RoomStats{TotalMessages: total, UnreadCount: unread}, nil
}

func (s *messageService) History(ctx context.Context, room string, limit, offset int) ([]dto.MessageResponse, error) {
	messages, err := s.ListByRoom(ctx, room, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		deliveredTo := msg.DeliveredTo
		if deliveredTo == nil {
			deliveredTo = []string{}
		}
		readBy := msg.ReadBy
		if readBy == nil {
			readBy = []string{}
		}
		out[i] = dto.MessageResponse{
			Id:          msg.Id,
			UserId:      msg.AuthorId,
			Username:    msg.AuthorUsername,
			DisplayName: msg.AuthorDisplayName,
			Avatar:      msg.AuthorAvatar,
			Message:     msg.Text,
			Room:        msg.Room,
			Timestamp:   msg.CreatedAt,
			EditedAt:    msg.EditedAt,
			DeliveredTo: deliveredTo,
			ReadBy:      readBy,
		}
	}
	return out, nil
}

func (s *messageService) EditHistory(ctx context.Context, messageId int64) ([]dto.MessageEditResponse, error) {
	edits, err := s.messageRepo.FindEditHistory(ctx, messageId)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MessageEditResponse, len(edits))
	for i, edit := range edits {
		out[i] = dto.MessageEditResponse{
			Id:           edit.Id,
			MessageId:    edit.MessageId,
			PreviousText: edit.OldText,
			EditedAt:     edit.EditedAt,
		}
	}
	return out, nil
}

func (s *messageService) toChatMessage(msg *entity.Message) *chat.Message {
	return &chat.Message{
		Id:        msg.Id,
		Room:      msg.Room,
		AuthorId:  msg.AuthorId,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedAt,
		Deleted:   msg.IsDeleted,
	}
}

func (s *messageService) hydrateReceipts(ctx context.Context, messages []*chat.Message) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]int64, len(messages))
	for i, msg := range messages {
		ids[i] = msg.Id
	}

	delivered, err := s.receiptRepo.ListDeliveredToForMessages(ctx, ids)
	if err != nil {
		return err
	}
	read, err := s.receiptRepo.ListReadByForMessages(ctx, ids)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		msg.DeliveredTo = delivered[msg.Id]
		msg.ReadBy = read[msg.Id]
	}
	return nil
}

// hydrateAuthors fills author display metadata for stored users. Guest
// authors keep their connection id as the username; lookup failures leave the
// message usable, just undecorated.
func (s *messageService) hydrateAuthors(ctx context.Context, messages []*chat.Message) {
	profiles := make(map[string]*entity.User)
	for _, msg := range messages {
		id, err := uuid.Parse(msg.AuthorId)
		if err != nil {
			msg.AuthorUsername = msg.AuthorId
			msg.AuthorDisplayName = msg.AuthorId
			continue
		}

		user, cached := profiles[msg.AuthorId]
		if !cached {
			user, err = s.userRepo.FindById(ctx, id)
			if err != nil {
				continue
			}
			profiles[msg.AuthorId] = user
		}
		if user == nil {
			msg.AuthorUsername = msg.AuthorId
			msg.AuthorDisplayName = msg.AuthorId
			continue
		}
		msg.AuthorUsername = user.Username
		msg.AuthorDisplayName = user.DisplayName
		msg.AuthorAvatar = user.Avatar
	}
}
