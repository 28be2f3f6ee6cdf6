package chat

import (
	"context"
	"time"
)

// UserProfile is the display metadata the engine needs about a stored user.
type UserProfile struct {
	Id          string
	Username    string
	DisplayName string
	Avatar      string
}

// Presence is a user's online flag plus when they were last seen.
type Presence struct {
	Online   bool
	LastSeen time.Time
}

// IdentityStore resolves user accounts and presence. The engine never
// performs credential checks itself. Absent users are (nil, nil).
type IdentityStore interface {
	FindUserById(ctx context.Context, id string) (*UserProfile, error)
	FindUserByUsernameOrEmail(ctx context.Context, identifier string) (*UserProfile, error)
	SetOnlineStatus(ctx context.Context, id string, online bool) error
	GetOnlineStatus(ctx context.Context, id string) (Presence, error)
}

// TokenClaims is the identity embedded in a verified access token.
type TokenClaims struct {
	UserId   string
	Username string
	Email    string
}

// TokenVerifier checks an access token supplied with a join event. Invalid
// tokens return an error; the caller falls back to a guest identity.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// Message is the engine's read view of a stored message, including author
// display metadata and the current acknowledgement sets.
type Message struct {
	Id                int64
	Room              string
	AuthorId          string
	AuthorUsername    string
	AuthorDisplayName string
	AuthorAvatar      string
	Text              string
	CreatedAt         time.Time
	EditedAt          *time.Time
	Deleted           bool
	DeliveredTo       []string
	ReadBy            []string
}

// RoomStats is the room-wide message aggregate. UnreadCount counts undeleted
// messages with zero read receipts from anyone.
type RoomStats struct {
	TotalMessages int64
	UnreadCount   int64
}

// MessageStore owns message text and authorship. The engine only reads and
// creates through it; receipt state is owned by the Ledger.
type MessageStore interface {
	CreateMessage(ctx context.Context, room, authorId, text string) (*Message, error)
	// GetMessage returns (nil, nil) for unknown ids. Soft-deleted messages
	// are returned with Deleted set so the ledger can reject them.
	GetMessage(ctx context.Context, id int64) (*Message, error)
	// ListByRoom returns undeleted room messages oldest first.
	ListByRoom(ctx context.Context, room string, limit, offset int) ([]*Message, error)
	SoftDelete(ctx context.Context, id int64) error
	// EditMessage preserves the prior text in an append-only history. It
	// reports false when the message is absent or authorId is not the author.
	EditMessage(ctx context.Context, id int64, authorId, newText string) (bool, error)
	RoomStats(ctx context.Context, room string) (RoomStats, error)
}

// ReceiptStore persists acknowledgement facts with set-union semantics:
// inserting an existing (message, user) pair reports inserted == false.
type ReceiptStore interface {
	InsertDelivery(ctx context.Context, messageId int64, userId string) (bool, error)
	InsertRead(ctx context.Context, messageId int64, userId string) (bool, error)
	ListDeliveredTo(ctx context.Context, messageId int64) ([]string, error)
	ListReadBy(ctx context.Context, messageId int64) ([]string, error)
}

// Emitter delivers outbound events to live connections. Implemented by the
// websocket hub. Delivery to a gone connection is a silent no-op.
type Emitter interface {
	Unicast(connectionId string, event OutboundEvent)
	Multicast(connectionIds []string, event OutboundEvent)
}

// EventPublisher exports chat domain events to the in-process bus for the
// audit/export pipeline. Never blocks event handling.
type EventPublisher interface {
	PublishChatEvent(eventType, room string, payload map[string]interface{})
}
