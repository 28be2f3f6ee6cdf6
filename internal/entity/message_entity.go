package entity

import (
	"time"
)

// Message is a room message. AuthorId is a string rather than a UUID because
// guest sessions author messages under their connection id.
type Message struct {
	Id        int64
	Room      string
	AuthorId  string
	Text      string
	CreatedAt time.Time
	EditedAt  *time.Time
	IsDeleted bool
}

// MessageEdit is one entry of a message's append-only edit history.
type MessageEdit struct {
	Id        int64
	MessageId int64
	OldText   string
	EditedAt  time.Time
}
