package mapper

import (
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		Room:      msg.Room,
		AuthorId:  msg.AuthorId,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedAt,
		IsDeleted: msg.IsDeleted,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}
	return &model.Message{
		Id:        msg.Id,
		Room:      msg.Room,
		AuthorId:  msg.AuthorId,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		EditedAt:  msg.EditedAt,
		IsDeleted: msg.IsDeleted,
	}
}

func (m *ChatMapper) MessageEditToEntity(e *model.MessageEdit) *entity.MessageEdit {
	if e == nil {
		return nil
	}
	return &entity.MessageEdit{
		Id:        e.Id,
		MessageId: e.MessageId,
		OldText:   e.OldText,
		EditedAt:  e.EditedAt,
	}
}

// User Mappers

func (m *ChatMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		Avatar:       u.Avatar,
		Bio:          u.Bio,
		IsOnline:     u.IsOnline,
		LastSeen:     u.LastSeen,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *ChatMapper) UserToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		Avatar:       u.Avatar,
		Bio:          u.Bio,
		IsOnline:     u.IsOnline,
		LastSeen:     u.LastSeen,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Room Mappers

func (m *ChatMapper) RoomToEntity(r *model.Room) *entity.Room {
	if r == nil {
		return nil
	}
	return &entity.Room{
		Id:        r.Id,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}
