package service

import (
	"context"
	"errors"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// IUserService is the account surface: profile reads and updates for HTTP,
// plus the identity lookups the chat engine makes during joins and
// broadcasts.
type IUserService interface {
	chat.IdentityStore

	GetProfile(ctx context.Context, userId uuid.UUID) (*entity.PublicProfile, error)
	GetByUsername(ctx context.Context, username string) (*entity.PublicProfile, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*entity.PublicProfile, error)
}

type userService struct {
	userRepo contract.UserRepository
	presence IPresenceService
}

func NewUserService(userRepo contract.UserRepository, presence IPresenceService) IUserService {
	return &userService{
		userRepo: userRepo,
		presence: presence,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*entity.PublicProfile, error) {
	user, err := s.userRepo.FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Public(), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*entity.PublicProfile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Public(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*entity.PublicProfile, error) {
	user, err := s.userRepo.FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// FindUserById resolves a user for the chat engine. Non-uuid ids are guest
// connection ids and resolve to absent rather than erroring.
func (s *userService) FindUserById(ctx context.Context, id string) (*chat.UserProfile, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	user, err := s.userRepo.FindById(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &chat.UserProfile{
		Id:          user.Id.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
	}, nil
}

func (s *userService) FindUserByUsernameOrEmail(ctx context.Context, identifier string) (*chat.UserProfile, error) {
	user, err := s.userRepo.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &chat.UserProfile{
		Id:          user.Id.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
	}, nil
}

func (s *userService) SetOnlineStatus(ctx context.Context, id string, online bool) error {
	return s.presence.SetOnline(ctx, id, online)
}

func (s *userService) GetOnlineStatus(ctx context.Context, id string) (chat.Presence, error) {
	return s.presence.GetPresence(ctx, id)
}
