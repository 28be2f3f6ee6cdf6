package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	DisplayName  string
	Avatar       string
	Bio          string
	IsOnline     bool
	LastSeen     *time.Time
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicProfile is the shape of a user that may be sent to other clients.
// It never carries the password hash.
type PublicProfile struct {
	Id          uuid.UUID  `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
	Bio         string     `json:"bio"`
	IsOnline    bool       `json:"online"`
	LastSeen    *time.Time `json:"lastSeen"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		Id:          u.Id,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		IsOnline:    u.IsOnline,
		LastSeen:    u.LastSeen,
		CreatedAt:   u.CreatedAt,
	}
}
