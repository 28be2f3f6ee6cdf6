package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(100)"`
	Avatar       string    `gorm:"type:text"`
	Bio          string    `gorm:"type:text"`
	IsOnline     bool      `gorm:"not null;default:false"`
	LastSeen     *time.Time
	LastLogin    *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
