package entity

import (
	"time"
)

// DeliveryReceipt records that a user's client received a message.
// At most one exists per (message, user) pair.
type DeliveryReceipt struct {
	MessageId int64
	UserId    string
	CreatedAt time.Time
}

// ReadReceipt records that a user read a message. A read receipt implies a
// delivery receipt for the same pair.
type ReadReceipt struct {
	MessageId int64
	UserId    string
	CreatedAt time.Time
}
