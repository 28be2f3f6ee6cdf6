package service

import (
	"context"
	"errors"
	"time"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
)

var ErrRoomNotFound = errors.New("room not found")

type IRoomService interface {
	CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	ListRooms(ctx context.Context) ([]dto.RoomResponse, error)
	GetStats(ctx context.Context, room string) (*dto.RoomStatsResponse, error)
	ListActiveUsers(room string) []dto.RoomUserResponse
}

type roomService struct {
	roomRepo contract.RoomRepository
	registry *chat.Registry
	messages IMessageService
}

func NewRoomService(roomRepo contract.RoomRepository, registry *chat.Registry, messages IMessageService) IRoomService {
	return &roomService{
		roomRepo: roomRepo,
		registry: registry,
		messages: messages,
	}
}

func (s *roomService) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.roomRepo.GetOrCreate(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return s.roomResponse(ctx, room)
}

func (s *roomService) ListRooms(ctx context.Context) ([]dto.RoomResponse, error) {
	rooms, err := s.roomRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.RoomResponse, len(rooms))
	for i, room := range rooms {
		res, err := s.roomResponse(ctx, room)
		if err != nil {
			return nil, err
		}
		out[i] = *res
	}
	return out, nil
}

func (s *roomService) roomResponse(ctx context.Context, room *entity.Room) (*dto.RoomResponse, error) {
	lastActivity, err := s.lastActivity(ctx, room)
	if err != nil {
		return nil, err
	}
	return &dto.RoomResponse{
		Id:           room.Id.String(),
		Name:         room.Name,
		ActiveUsers:  s.registry.CountByRoom(room.Name),
		CreatedAt:    room.CreatedAt,
		LastActivity: lastActivity,
	}, nil
}

// lastActivity is the newest undeleted message's timestamp, or the room's
// creation time when nobody has talked yet.
func (s *roomService) lastActivity(ctx context.Context, room *entity.Room) (time.Time, error) {
	latest, err := s.messages.ListByRoom(ctx, room.Name, 1, 0)
	if err != nil {
		return time.Time{}, err
	}
	if len(latest) == 0 {
		return room.CreatedAt, nil
	}
	return latest[0].CreatedAt, nil
}

// ListActiveUsers reports the live sessions in a room, oldest join first.
func (s *roomService) ListActiveUsers(room string) []dto.RoomUserResponse {
	sessions := s.registry.ListByRoom(room)
	out := make([]dto.RoomUserResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = dto.RoomUserResponse{
			SessionId:   sess.SessionId,
			UserId:      sess.UserId(),
			Username:    sess.Username,
			DisplayName: sess.DisplayName,
			Room:        sess.Room,
			JoinedAt:    sess.JoinedAt,
		}
	}
	return out
}

func (s *roomService) GetStats(ctx context.Context, roomName string) (*dto.RoomStatsResponse, error) {
	room, err := s.roomRepo.FindByName(ctx, roomName)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	stats, err := s.messages.RoomStats(ctx, roomName)
	if err != nil {
		return nil, err
	}
	return &dto.RoomStatsResponse{
		Room:          roomName,
		ActiveUsers:   s.registry.CountByRoom(roomName),
		TotalMessages: stats.TotalMessages,
		UnreadCount:   stats.UnreadCount,
	}, nil
}
