package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// In-memory fakes for the engine's collaborator interfaces. They mirror the
// store semantics the gorm implementations provide (absent rows are nil,
// conflict-free receipt inserts) so engine tests run without a database.

type fakeLogger struct{}

func (fakeLogger) Debug(module, message string, details map[string]interface{}) {}
func (fakeLogger) Info(module, message string, details map[string]interface{})  {}
func (fakeLogger) Warn(module, message string, details map[string]interface{})  {}
func (fakeLogger) Error(module, message string, details map[string]interface{}) {}
func (fakeLogger) Sync() error                                                  { return nil }

type fakeIdentityStore struct {
	mu       sync.Mutex
	users    map[string]*UserProfile
	presence map[string]Presence
	failAll  bool
}

func newFakeIdentityStore() *fakeIdentityStore {
	return &fakeIdentityStore{
		users:    make(map[string]*UserProfile),
		presence: make(map[string]Presence),
	}
}

func (f *fakeIdentityStore) addUser(p UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[p.Id] = &p
}

func (f *fakeIdentityStore) FindUserById(ctx context.Context, id string) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("identity store down")
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeIdentityStore) FindUserByUsernameOrEmail(ctx context.Context, identifier string) (*UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("identity store down")
	}
	for _, u := range f.users {
		if u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityStore) SetOnlineStatus(ctx context.Context, id string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("identity store down")
	}
	f.presence[id] = Presence{Online: online, LastSeen: time.Now()}
	return nil
}

func (f *fakeIdentityStore) GetOnlineStatus(ctx context.Context, id string) (Presence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return Presence{}, errors.New("identity store down")
	}
	return f.presence[id], nil
}

type fakeTokenVerifier struct {
	claims map[string]*TokenClaims
}

func newFakeTokenVerifier() *fakeTokenVerifier {
	return &fakeTokenVerifier{claims: make(map[string]*TokenClaims)}
}

func (f *fakeTokenVerifier) Verify(token string) (*TokenClaims, error) {
	c, ok := f.claims[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	nextId   int64
	messages map[int64]*Message
	edits    map[int64][]string
	receipts *fakeReceiptStore
	failAll  bool
}

func newFakeMessageStore(receipts *fakeReceiptStore) *fakeMessageStore {
	return &fakeMessageStore{
		messages: make(map[int64]*Message),
		edits:    make(map[int64][]string),
		receipts: receipts,
	}
}

func (f *fakeMessageStore) CreateMessage(ctx context.Context, room, authorId, text string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("message store down")
	}
	f.nextId++
	msg := &Message{
		Id:        f.nextId,
		Room:      room,
		AuthorId:  authorId,
		Text:      text,
		CreatedAt: time.Now(),
	}
	f.messages[msg.Id] = msg
	cp := *msg
	return &cp, nil
}

func (f *fakeMessageStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("message store down")
	}
	msg, ok := f.messages[id]
	if !ok {
		return nil, nil
	}
	cp := *msg
	if f.receipts != nil {
		cp.DeliveredTo = f.receipts.deliveredTo(id)
		cp.ReadBy = f.receipts.readBy(id)
	}
	return &cp, nil
}

func (f *fakeMessageStore) ListByRoom(ctx context.Context, room string, limit, offset int) ([]*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("message store down")
	}
	var out []*Message
	for _, msg := range f.messages {
		if msg.Room != room || msg.Deleted {
			continue
		}
		cp := *msg
		if f.receipts != nil {
			cp.DeliveredTo = f.receipts.deliveredTo(msg.Id)
			cp.ReadBy = f.receipts.readBy(msg.Id)
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessageStore) SoftDelete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := f.messages[id]; ok {
		msg.Deleted = true
	}
	return nil
}

func (f *fakeMessageStore) EditMessage(ctx context.Context, id int64, authorId, newText string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok || msg.Deleted || msg.AuthorId != authorId {
		return false, nil
	}
	f.edits[id] = append(f.edits[id], msg.Text)
	msg.Text = newText
	now := time.Now()
	msg.EditedAt = &now
	return true, nil
}

func (f *fakeMessageStore) RoomStats(ctx context.Context, room string) (RoomStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats RoomStats
	for _, msg := range f.messages {
		if msg.Room != room || msg.Deleted {
			continue
		}
		stats.TotalMessages++
		if f.receipts == nil || len(f.receipts.readBy(msg.Id)) == 0 {
			stats.UnreadCount++
		}
	}
	return stats, nil
}

type fakeReceiptStore struct {
	mu         sync.Mutex
	deliveries map[int64]map[string]bool
	reads      map[int64]map[string]bool
	failAll    bool
}

func newFakeReceiptStore() *fakeReceiptStore {
	return &fakeReceiptStore{
		deliveries: make(map[int64]map[string]bool),
		reads:      make(map[int64]map[string]bool),
	}
}

func insertReceipt(m map[int64]map[string]bool, messageId int64, userId string) bool {
	set, ok := m[messageId]
	if !ok {
		set = make(map[string]bool)
		m[messageId] = set
	}
	if set[userId] {
		return false
	}
	set[userId] = true
	return true
}

func listReceipts(m map[int64]map[string]bool, messageId int64) []string {
	out := make([]string, 0, len(m[messageId]))
	for userId := range m[messageId] {
		out = append(out, userId)
	}
	sort.Strings(out)
	return out
}

func (f *fakeReceiptStore) InsertDelivery(ctx context.Context, messageId int64, userId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errors.New("receipt store down")
	}
	return insertReceipt(f.deliveries, messageId, userId), nil
}

func (f *fakeReceiptStore) InsertRead(ctx context.Context, messageId int64, userId string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errors.New("receipt store down")
	}
	return insertReceipt(f.reads, messageId, userId), nil
}

func (f *fakeReceiptStore) ListDeliveredTo(ctx context.Context, messageId int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return listReceipts(f.deliveries, messageId), nil
}

func (f *fakeReceiptStore) ListReadBy(ctx context.Context, messageId int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return listReceipts(f.reads, messageId), nil
}

func (f *fakeReceiptStore) deliveredTo(messageId int64) []string {
	return listReceipts(f.deliveries, messageId)
}

func (f *fakeReceiptStore) readBy(messageId int64) []string {
	return listReceipts(f.reads, messageId)
}

// sentEvent records one emitter call: which connection got which event.
type sentEvent struct {
	ConnectionId string
	Event        OutboundEvent
}

type recordingEmitter struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (r *recordingEmitter) Unicast(connectionId string, event OutboundEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentEvent{ConnectionId: connectionId, Event: event})
}

func (r *recordingEmitter) Multicast(connectionIds []string, event OutboundEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range connectionIds {
		r.sent = append(r.sent, sentEvent{ConnectionId: id, Event: event})
	}
}

// eventsFor filters the recorded sends down to one connection and event name.
func (r *recordingEmitter) eventsFor(connectionId, eventName string) []OutboundEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []OutboundEvent
	for _, s := range r.sent {
		if s.ConnectionId == connectionId && s.Event.Event == eventName {
			out = append(out, s.Event)
		}
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

type publishedEvent struct {
	EventType string
	Room      string
	Payload   map[string]interface{}
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (r *recordingPublisher) PublishChatEvent(eventType, room string, payload map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, publishedEvent{EventType: eventType, Room: room, Payload: payload})
}
