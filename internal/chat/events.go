package chat

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Inbound event names. The set is closed: anything else is rejected at the
// boundary with a scoped error event.
const (
	EventJoin             = "join"
	EventSendMessage      = "send-message"
	EventMessageDelivered = "message-delivered"
	EventMessageRead      = "message-read"
	EventMarkAllRead      = "mark-all-read"
	EventTyping           = "typing"
	EventUpdateStatus     = "update-online-status"
	EventEditMessage      = "edit-message"
	EventDeleteMessage    = "delete-message"
	EventLeaveRoom        = "leave-room"
)

// Outbound event names.
const (
	EventUserJoined       = "user-joined"
	EventRoomUsers        = "room-users"
	EventMessageHistory   = "message-history"
	EventReceiveMessage   = "receive-message"
	EventStatusUpdate     = "message-status-update"
	EventReadUpdate       = "message-read-update"
	EventMessagesMarked   = "messages-marked-read"
	EventUserTyping       = "user-typing"
	EventUserStatusUpdate = "user-status-update"
	EventMessageEdited    = "message-edited"
	EventMessageDeleted   = "message-deleted"
	EventUserLeft         = "user-left"
	EventError            = "error"
)

// Envelope is the wire frame of every inbound event.
type Envelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

type JoinPayload struct {
	Username string `json:"username" validate:"omitempty,min=1,max=50"`
	Room     string `json:"room" validate:"required,min=1,max=100"`
	UserId   string `json:"userId"`
	Token    string `json:"token"`
}

type SendMessagePayload struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type AckPayload struct {
	MessageId int64 `json:"messageId" validate:"required,gt=0"`
}

type TypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

type StatusPayload struct {
	Online bool `json:"online"`
}

type EditMessagePayload struct {
	MessageId int64  `json:"messageId" validate:"required,gt=0"`
	NewText   string `json:"newText" validate:"required,max=4000"`
}

type DeleteMessagePayload struct {
	MessageId int64 `json:"messageId" validate:"required,gt=0"`
}

// OutboundEvent is the wire frame of every event sent to clients.
type OutboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// MessageView is the client-facing shape of a message.
type MessageView struct {
	Id          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
	UserId      string     `json:"userId"`
	Message     string     `json:"message"`
	Room        string     `json:"room"`
	Timestamp   time.Time  `json:"timestamp"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
	Delivered   bool       `json:"delivered"`
	DeliveredTo []string   `json:"deliveredTo"`
	Read        bool       `json:"read"`
	ReadBy      []string   `json:"readBy"`
}

// RoomUserView is one entry of the room-users list.
type RoomUserView struct {
	SessionId   string     `json:"sessionId"`
	UserId      string     `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
	Room        string     `json:"room"`
	JoinedAt    time.Time  `json:"joinedAt"`
	Online      bool       `json:"online"`
	LastSeen    *time.Time `json:"lastSeen,omitempty"`
}

type UserJoinedPayload struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Avatar      string    `json:"avatar"`
	UserId      string    `json:"userId"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type UserLeftPayload struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	UserId      string    `json:"userId"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type StatusUpdatePayload struct {
	MessageId   int64     `json:"messageId"`
	Delivered   bool      `json:"delivered"`
	DeliveredTo []string  `json:"deliveredTo"`
	DeliveredBy string    `json:"deliveredBy"`
	Timestamp   time.Time `json:"timestamp"`
}

type ReadUpdatePayload struct {
	MessageId      int64     `json:"messageId"`
	Read           bool      `json:"read"`
	ReadBy         []string  `json:"readBy"`
	ReadByUser     string    `json:"readByUser"`
	ReadByUsername string    `json:"readByUsername"`
	Timestamp      time.Time `json:"timestamp"`
}

type MessagesMarkedPayload struct {
	MessageIds     []int64   `json:"messageIds"`
	ReadBy         string    `json:"readBy"`
	ReadByUsername string    `json:"readByUsername"`
	Timestamp      time.Time `json:"timestamp"`
}

type UserTypingPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	UserId      string `json:"userId"`
	IsTyping    bool   `json:"isTyping"`
}

type UserStatusPayload struct {
	UserId      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Online      bool      `json:"online"`
	LastSeen    time.Time `json:"lastSeen"`
}

type MessageEditedPayload struct {
	MessageId int64     `json:"messageId"`
	NewText   string    `json:"newText"`
	EditedBy  string    `json:"editedBy"`
	EditedAt  time.Time `json:"editedAt"`
}

type MessageDeletedPayload struct {
	MessageId int64     `json:"messageId"`
	DeletedBy string    `json:"deletedBy"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// decodePayload unmarshals and validates an inbound payload in one step so
// malformed events are rejected before they reach the state machine.
func decodePayload[T any](validate *validator.Validate, data json.RawMessage, out *T) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
