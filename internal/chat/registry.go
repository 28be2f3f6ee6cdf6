package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the single source of truth for live sessions: who is online,
// in which room, on which connection. All state lives behind one lock and is
// only reachable through the operations below; callers get copies, never the
// guarded structs.
//
// Room membership is a derived view: listing a room filters the session map.
// That keeps join/leave and membership reads on the same lock, so a broadcast
// target set computed after a mutation always observes it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	seq      uint64
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// JoinParams carries everything needed to create a session.
type JoinParams struct {
	ConnectionId string
	Identity     Identity
	Username     string
	DisplayName  string
	Avatar       string
	Room         string
}

// Join removes any existing session for the connection and creates a new one
// bound to the given room. Delete-then-create guarantees the single-session-
// per-connection invariant even for re-joins on a live connection.
func (r *Registry) Join(p JoinParams) *Session {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, p.ConnectionId)

	r.seq++
	s := &Session{
		SessionId:    uuid.NewString(),
		ConnectionId: p.ConnectionId,
		Identity:     p.Identity,
		Username:     p.Username,
		DisplayName:  p.DisplayName,
		Avatar:       p.Avatar,
		Room:         p.Room,
		JoinedAt:     now,
		LastActivity: now,
		seq:          r.seq,
	}
	r.sessions[p.ConnectionId] = s

	return snapshot(s)
}

// FindByConnection returns the session bound to the connection, or absent.
func (r *Registry) FindByConnection(connectionId string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connectionId]
	if !ok {
		return nil, false
	}
	return snapshot(s), true
}

// FindByUser returns the most recently joined session for the user key, or
// absent. Ties on JoinedAt break toward the later join.
func (r *Registry) FindByUser(userId string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Session
	for _, s := range r.sessions {
		if s.UserId() != userId {
			continue
		}
		if latest == nil || s.seq > latest.seq {
			latest = s
		}
	}
	if latest == nil {
		return nil, false
	}
	return snapshot(latest), true
}

// Leave removes and returns the connection's session. Leaving a connection
// that never joined is not an error; it reports absent.
func (r *Registry) Leave(connectionId string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connectionId]
	if !ok {
		return nil, false
	}
	delete(r.sessions, connectionId)
	return snapshot(s), true
}

// ListByRoom returns the room's sessions ordered by join time ascending.
func (r *Registry) ListByRoom(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session
	for _, s := range r.sessions {
		if s.Room == room {
			out = append(out, snapshot(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CountByRoom returns the number of distinct users with a session in the room.
func (r *Registry) CountByRoom(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[string]struct{})
	for _, s := range r.sessions {
		if s.Room == room {
			users[s.UserId()] = struct{}{}
		}
	}
	return len(users)
}

// Rooms returns the distinct room names with at least one session, sorted.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, s := range r.sessions {
		seen[s.Room] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for room := range seen {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

// Touch advances the connection's LastActivity. Advisory only.
func (r *Registry) Touch(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[connectionId]; ok {
		s.LastActivity = time.Now()
	}
}

// CleanupInactive removes sessions idle for longer than maxIdle and returns
// them, oldest first.
func (r *Registry) CleanupInactive(maxIdle time.Duration) []*Session {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Session
	for connId, s := range r.sessions {
		if s.LastActivity.Before(cutoff) {
			removed = append(removed, snapshot(s))
			delete(r.sessions, connId)
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		return removed[i].seq < removed[j].seq
	})
	return removed
}

func snapshot(s *Session) *Session {
	copied := *s
	return &copied
}
