package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventLog is the persisted audit trail of chat domain events, written by the
// export worker that drains the in-process event bus.
type EventLog struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType  string         `gorm:"type:varchar(64);not null;index"`
	Room       string         `gorm:"type:varchar(100);index"`
	Payload    datatypes.JSON `gorm:"type:jsonb"`
	OccurredAt time.Time      `gorm:"not null;index"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (EventLog) TableName() string {
	return "chat_event_log"
}
