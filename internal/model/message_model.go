package model

import (
	"time"
)

// Message ids are a bigserial so creation order is reflected in id order.
// Room is denormalized onto the message row to keep the hot read path
// (history, ledger lookups) join-free.
type Message struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Room      string    `gorm:"type:varchar(100);not null;index"`
	AuthorId  string    `gorm:"type:varchar(64);not null;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	EditedAt  *time.Time
	IsDeleted bool `gorm:"not null;default:false"`
}

func (Message) TableName() string {
	return "messages"
}

type MessageEdit struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	MessageId int64     `gorm:"not null;index"`
	OldText   string    `gorm:"type:text;not null"`
	EditedAt  time.Time `gorm:"autoCreateTime"`
}

func (MessageEdit) TableName() string {
	return "message_edit_history"
}
