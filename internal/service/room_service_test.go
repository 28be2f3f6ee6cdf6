package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoomRepo struct {
	rooms map[string]*entity.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
}

func (f *fakeRoomRepo) GetOrCreate(ctx context.Context, name string) (*entity.Room, error) {
	if room, ok := f.rooms[name]; ok {
		return room, nil
	}
	room := &entity.Room{Id: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.rooms[name] = room
	return room, nil
}

func (f *fakeRoomRepo) FindByName(ctx context.Context, name string) (*entity.Room, error) {
	return f.rooms[name], nil
}

func (f *fakeRoomRepo) FindAll(ctx context.Context) ([]*entity.Room, error) {
	out := make([]*entity.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// stubMessages satisfies IMessageService with just enough behavior for the
// room surface: per-room message slices ordered oldest first.
type stubMessages struct {
	byRoom map[string][]*chat.Message
	stats  chat.RoomStats
}

func (s *stubMessages) CreateMessage(ctx context.Context, room, authorId, text string) (*chat.Message, error) {
	return nil, nil
}

func (s *stubMessages) GetMessage(ctx context.Context, id int64) (*chat.Message, error) {
	return nil, nil
}

func (s *stubMessages) ListByRoom(ctx context.Context, room string, limit, offset int) ([]*chat.Message, error) {
	msgs := s.byRoom[room]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *stubMessages) SoftDelete(ctx context.Context, id int64) error { return nil }

func (s *stubMessages) EditMessage(ctx context.Context, id int64, authorId, newText string) (bool, error) {
	return false, nil
}

func (s *stubMessages) RoomStats(ctx context.Context, room string) (chat.RoomStats, error) {
	return s.stats, nil
}

func (s *stubMessages) History(ctx context.Context, room string, limit, offset int) ([]dto.MessageResponse, error) {
	return nil, nil
}

func (s *stubMessages) EditHistory(ctx context.Context, messageId int64) ([]dto.MessageEditResponse, error) {
	return nil, nil
}

func TestRoomServiceListRoomsLastActivity(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoomRepo()
	registry := chat.NewRegistry()

	quiet, err := repo.GetOrCreate(ctx, "quiet")
	require.NoError(t, err)
	busy, err := repo.GetOrCreate(ctx, "busy")
	require.NoError(t, err)

	latest := time.Now().Add(2 * time.Hour)
	messages := &stubMessages{byRoom: map[string][]*chat.Message{
		"busy": {
			{Id: 1, Room: "busy", CreatedAt: latest.Add(-time.Hour)},
			{Id: 2, Room: "busy", CreatedAt: latest},
		},
	}}

	svc := NewRoomService(repo, registry, messages)
	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// FindAll sorts by name: busy first, quiet second.
	assert.Equal(t, latest, rooms[0].LastActivity)
	// A room with no messages falls back to its creation time.
	assert.Equal(t, quiet.CreatedAt, rooms[1].LastActivity)
	assert.Equal(t, busy.CreatedAt, rooms[0].CreatedAt)
}

func TestRoomServiceListRoomsActiveUsers(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRoomRepo()
	registry := chat.NewRegistry()
	_, err := repo.GetOrCreate(ctx, "general")
	require.NoError(t, err)

	registry.Join(chat.JoinParams{
		ConnectionId: "conn-1",
		Identity:     chat.GuestIdentity("conn-1"),
		Username:     "alice",
		Room:         "general",
	})
	registry.Join(chat.JoinParams{
		ConnectionId: "conn-2",
		Identity:     chat.GuestIdentity("conn-2"),
		Username:     "bob",
		Room:         "general",
	})

	svc := NewRoomService(repo, registry, &stubMessages{byRoom: map[string][]*chat.Message{}})
	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].ActiveUsers)

	users := svc.ListActiveUsers("general")
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestRoomServiceGetStatsUnknownRoom(t *testing.T) {
	svc := NewRoomService(newFakeRoomRepo(), chat.NewRegistry(), &stubMessages{})

	_, err := svc.GetStats(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
