package dto

import "time"

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type RoomResponse struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	ActiveUsers  int       `json:"activeUsers"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type RoomUserResponse struct {
	SessionId   string    `json:"sessionId"`
	UserId      string    `json:"userId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Room        string    `json:"room"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type RoomStatsResponse struct {
	Room          string `json:"room"`
	ActiveUsers   int    `json:"activeUsers"`
	TotalMessages int64  `json:"totalMessages"`
	UnreadCount   int64  `json:"unreadCount"`
}

type MessageResponse struct {
	Id          int64      `json:"id"`
	UserId      string     `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Avatar      string     `json:"avatar"`
	Message     string     `json:"message"`
	Room        string     `json:"room"`
	Timestamp   time.Time  `json:"timestamp"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
	DeliveredTo []string   `json:"deliveredTo"`
	ReadBy      []string   `json:"readBy"`
}

type MessageEditResponse struct {
	Id           int64     `json:"id"`
	MessageId    int64     `json:"messageId"`
	PreviousText string    `json:"previousText"`
	EditedAt     time.Time `json:"editedAt"`
}
