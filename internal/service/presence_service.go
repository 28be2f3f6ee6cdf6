package service

import (
	"context"
	"encoding/json"
	"time"

	"realtime-chat-be/internal/chat"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	presenceKeyPrefix = "chat:presence:"
	presenceTTL       = 24 * time.Hour
	localCacheTTL     = 10 * time.Second
)

// IPresenceService tracks online flags for authenticated users. Redis is the
// shared source when configured; a short-lived local cache absorbs the
// per-broadcast lookups, and the users table is updated write-through so
// presence survives a cold start.
type IPresenceService interface {
	SetOnline(ctx context.Context, userId string, online bool) error
	GetPresence(ctx context.Context, userId string) (chat.Presence, error)
}

type presenceRecord struct {
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

type presenceService struct {
	rdb      *redis.Client
	local    *gocache.Cache
	userRepo contract.UserRepository
	logger   logger.ILogger
}

func NewPresenceService(rdb *redis.Client, userRepo contract.UserRepository, log logger.ILogger) IPresenceService {
	return &presenceService{
		rdb:      rdb,
		local:    gocache.New(localCacheTTL, time.Minute),
		userRepo: userRepo,
		logger:   log,
	}
}

func (s *presenceService) SetOnline(ctx context.Context, userId string, online bool) error {
	record := presenceRecord{Online: online, LastSeen: time.Now()}
	s.local.Set(userId, record, gocache.DefaultExpiration)

	if s.rdb != nil {
		data, err := json.Marshal(record)
		if err == nil {
			if err := s.rdb.Set(ctx, presenceKeyPrefix+userId, data, presenceTTL).Err(); err != nil {
				s.logger.Warn("Presence", "Redis write failed", map[string]interface{}{"user_id": userId, "error": err})
			}
		}
	}

	// Guests carry connection ids, which never reach the users table.
	if id, err := uuid.Parse(userId); err == nil {
		if err := s.userRepo.SetOnlineStatus(ctx, id, online, record.LastSeen); err != nil {
			return err
		}
	}
	return nil
}

func (s *presenceService) GetPresence(ctx context.Context, userId string) (chat.Presence, error) {
	if cached, ok := s.local.Get(userId); ok {
		record := cached.(presenceRecord)
		return chat.Presence{Online: record.Online, LastSeen: record.LastSeen}, nil
	}

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, presenceKeyPrefix+userId).Bytes()
		if err == nil {
			var record presenceRecord
			if err := json.Unmarshal(data, &record); err == nil {
				s.local.Set(userId, record, gocache.DefaultExpiration)
				return chat.Presence{Online: record.Online, LastSeen: record.LastSeen}, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("Presence", "Redis read failed", map[string]interface{}{"user_id": userId, "error": err})
		}
	}

	id, err := uuid.Parse(userId)
	if err != nil {
		// Unknown guest: no stored presence.
		return chat.Presence{}, nil
	}
	user, err := s.userRepo.FindById(ctx, id)
	if err != nil {
		return chat.Presence{}, err
	}
	if user == nil {
		return chat.Presence{}, nil
	}

	presence := chat.Presence{Online: user.IsOnline}
	if user.LastSeen != nil {
		presence.LastSeen = *user.LastSeen
	}
	s.local.Set(userId, presenceRecord{Online: presence.Online, LastSeen: presence.LastSeen}, gocache.DefaultExpiration)
	return presence, nil
}
