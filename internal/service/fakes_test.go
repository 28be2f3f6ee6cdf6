package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"realtime-chat-be/internal/entity"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.Id] = &cp
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return f.findWhere(func(u *entity.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.findWhere(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (f *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, identifier string) (*entity.User, error) {
	return f.findWhere(func(u *entity.User) bool {
		return u.Username == identifier || strings.EqualFold(u.Email, identifier)
	})
}

func (f *fakeUserRepo) SetOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.IsOnline = online
		user.LastSeen = &lastSeen
	}
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.LastLogin = &at
	}
	return nil
}

func (f *fakeUserRepo) findWhere(match func(*entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if match(user) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, nil
}
