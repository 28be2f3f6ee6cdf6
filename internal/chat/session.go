package chat

import (
	"time"
)

// Session binds one live connection to an identity and a room. At most one
// Session exists per connection id; a user may hold several sessions across
// connections (multiple tabs/devices).
type Session struct {
	SessionId    string
	ConnectionId string
	Identity     Identity
	Username     string
	DisplayName  string
	Avatar       string
	Room         string
	JoinedAt     time.Time
	LastActivity time.Time

	// seq breaks JoinedAt ties for "most recently joined" lookups.
	seq uint64
}

// UserId is the session's stable user key (see Identity.Key).
func (s *Session) UserId() string {
	return s.Identity.Key()
}
