package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("username or email already taken")
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo  contract.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(userRepo contract.UserRepository, jwtSecret string, jwtTTL time.Duration) IAuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	existing, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.userRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: *user.Public()}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByUsernameOrEmail(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.Id, time.Now()); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: *user.Public()}, nil
}

func (s *authService) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.Id.String(),
		"username": user.Username,
		"email":    user.Email,
		"exp":      time.Now().Add(s.jwtTTL).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// jwtVerifier checks access tokens presented with websocket join events.
type jwtVerifier struct {
	secret string
}

func NewTokenVerifier(secret string) chat.TokenVerifier {
	return &jwtVerifier{secret: secret}
}

func (v *jwtVerifier) Verify(tokenString string) (*chat.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userId, _ := claims["user_id"].(string)
	if userId == "" {
		return nil, errors.New("token missing user_id claim")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return &chat.TokenClaims{UserId: userId, Username: username, Email: email}, nil
}
