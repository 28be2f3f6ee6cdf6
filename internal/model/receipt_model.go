package model

import (
	"time"
)

type MessageDelivery struct {
	MessageId int64     `gorm:"primaryKey;autoIncrement:false"`
	UserId    string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (MessageDelivery) TableName() string {
	return "message_deliveries"
}

type MessageRead struct {
	MessageId int64     `gorm:"primaryKey;autoIncrement:false"`
	UserId    string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
