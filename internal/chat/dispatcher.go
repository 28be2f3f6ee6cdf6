package chat

import (
	"context"
	"fmt"
	"time"

	"realtime-chat-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Dispatcher routes inbound connection events through the session registry
// and delivery ledger and emits the resulting broadcasts.
//
// Ordering guarantees: the hub invokes HandleMessage synchronously from each
// connection's read loop, so one connection's events are processed strictly
// in arrival order, and HandleDisconnect only runs after any in-flight event
// for that connection has completed. Registry mutations finish before any
// membership read computes a broadcast target set.
type Dispatcher struct {
	registry *Registry
	ledger   *Ledger
	identity IdentityStore
	tokens   TokenVerifier
	messages MessageStore
	emitter  Emitter
	bus      EventPublisher
	logger   logger.ILogger
	validate *validator.Validate

	storeTimeout time.Duration
	historyLimit int
}

func NewDispatcher(
	registry *Registry,
	ledger *Ledger,
	identity IdentityStore,
	tokens TokenVerifier,
	messages MessageStore,
	emitter Emitter,
	bus EventPublisher,
	log logger.ILogger,
	storeTimeout time.Duration,
	historyLimit int,
) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		ledger:       ledger,
		identity:     identity,
		tokens:       tokens,
		messages:     messages,
		emitter:      emitter,
		bus:          bus,
		logger:       log,
		validate:     validator.New(),
		storeTimeout: storeTimeout,
		historyLimit: historyLimit,
	}
}

// HandleMessage processes one inbound frame from a connection. A failure is
// scoped to this event: the caller's connection and every other session stay
// untouched.
func (d *Dispatcher) HandleMessage(ctx context.Context, connectionId string, raw []byte) {
	ctx, cancel := context.WithTimeout(ctx, d.storeTimeout)
	defer cancel()

	var env Envelope
	if err := decodePayload(d.validate, raw, &env); err != nil {
		d.emitError(connectionId, "Malformed event")
		return
	}

	if env.Event != EventJoin {
		d.registry.Touch(connectionId)
	}

	switch env.Event {
	case EventJoin:
		d.handleJoin(ctx, connectionId, env)
	case EventSendMessage:
		d.handleSendMessage(ctx, connectionId, env)
	case EventMessageDelivered:
		d.handleMessageDelivered(ctx, connectionId, env)
	case EventMessageRead:
		d.handleMessageRead(ctx, connectionId, env)
	case EventMarkAllRead:
		d.handleMarkAllRead(ctx, connectionId)
	case EventTyping:
		d.handleTyping(ctx, connectionId, env)
	case EventUpdateStatus:
		d.handleUpdateStatus(ctx, connectionId, env)
	case EventEditMessage:
		d.handleEditMessage(ctx, connectionId, env)
	case EventDeleteMessage:
		d.handleDeleteMessage(ctx, connectionId, env)
	case EventLeaveRoom:
		d.handleLeave(ctx, connectionId)
	default:
		d.emitError(connectionId, fmt.Sprintf("Unknown event: %s", env.Event))
	}
}

// HandleDisconnect tears down the connection's session, if any. Disconnect
// of a never-joined or already-left connection is a silent no-op.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, connectionId string) {
	ctx, cancel := context.WithTimeout(ctx, d.storeTimeout)
	defer cancel()
	d.handleLeave(ctx, connectionId)
}

func (d *Dispatcher) handleJoin(ctx context.Context, connectionId string, env Envelope) {
	var p JoinPayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Failed to join room")
		return
	}

	ident, profile, err := d.resolveIdentity(ctx, connectionId, p)
	if err != nil {
		d.logger.Error("Dispatcher", "Identity store failed during join", map[string]interface{}{
			"connection_id": connectionId, "error": err,
		})
		d.emitError(connectionId, "Failed to join room")
		return
	}

	username := p.Username
	displayName := p.Username
	avatar := ""
	if profile != nil {
		username = profile.Username
		if profile.DisplayName != "" {
			displayName = profile.DisplayName
		} else {
			displayName = profile.Username
		}
		avatar = profile.Avatar
	}
	if username == "" {
		username = guestName(connectionId)
		displayName = username
	}

	// Fetch history before mutating the registry so a store failure leaves
	// the connection's session state unchanged and the client can retry.
	history, err := d.messages.ListByRoom(ctx, p.Room, d.historyLimit, 0)
	if err != nil {
		d.logger.Error("Dispatcher", "History fetch failed during join", map[string]interface{}{
			"room": p.Room, "error": err,
		})
		d.emitError(connectionId, "Failed to join room")
		return
	}

	session := d.registry.Join(JoinParams{
		ConnectionId: connectionId,
		Identity:     ident,
		Username:     username,
		DisplayName:  displayName,
		Avatar:       avatar,
		Room:         p.Room,
	})

	if !ident.IsGuest() {
		if err := d.identity.SetOnlineStatus(ctx, ident.Key(), true); err != nil {
			d.logger.Warn("Dispatcher", "Failed to set online status", map[string]interface{}{
				"user_id": ident.Key(), "error": err,
			})
		}
	}

	d.logger.Info("Dispatcher", "User joined room", map[string]interface{}{
		"room": p.Room, "user_id": session.UserId(), "connection_id": connectionId,
	})

	d.emitter.Multicast(d.roomConnections(session.Room, connectionId), OutboundEvent{
		Event: EventUserJoined,
		Data: UserJoinedPayload{
			Username:    session.Username,
			DisplayName: session.DisplayName,
			Avatar:      session.Avatar,
			UserId:      session.UserId(),
			Message:     fmt.Sprintf("%s has joined the chat", session.DisplayName),
			Timestamp:   time.Now(),
		},
	})

	d.emitRoomUsers(ctx, session.Room)

	views := make([]MessageView, len(history))
	for i, msg := range history {
		views[i] = d.messageView(msg)
	}
	d.emitter.Unicast(connectionId, OutboundEvent{Event: EventMessageHistory, Data: views})

	d.publish("USER_JOINED", session.Room, map[string]interface{}{
		"user_id": session.UserId(),
		"room":    session.Room,
		"guest":   ident.IsGuest(),
	})
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, connectionId string, env Envelope) {
	var p SendMessagePayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Malformed message")
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	msg, err := d.messages.CreateMessage(ctx, session.Room, session.UserId(), p.Message)
	if err != nil {
		d.logger.Error("Dispatcher", "Message persist failed", map[string]interface{}{
			"room": session.Room, "error": err,
		})
		d.emitError(connectionId, "Failed to send message")
		return
	}

	view := d.messageView(msg)
	// The store may not know guest authors; the session has the display
	// metadata either way.
	view.Username = session.Username
	view.DisplayName = session.DisplayName
	view.Avatar = session.Avatar

	// The sender receives its own echo so every client sees the canonical
	// server-assigned id and timestamp.
	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventReceiveMessage,
		Data:  view,
	})

	d.publish("MESSAGE_SENT", session.Room, map[string]interface{}{
		"message_id": msg.Id,
		"author_id":  msg.AuthorId,
		"room":       session.Room,
	})
}

func (d *Dispatcher) handleMessageDelivered(ctx context.Context, connectionId string, env Envelope) {
	var p AckPayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Malformed acknowledgement")
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	result, err := d.ledger.RecordDelivery(ctx, p.MessageId, session.UserId(), session.Room)
	if err != nil {
		d.logger.Error("Dispatcher", "Delivery record failed", map[string]interface{}{
			"message_id": p.MessageId, "error": err,
		})
		d.emitError(connectionId, "Failed to record delivery")
		return
	}
	if result == nil {
		return
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventStatusUpdate,
		Data: StatusUpdatePayload{
			MessageId:   result.MessageId,
			Delivered:   true,
			DeliveredTo: result.DeliveredTo,
			DeliveredBy: session.UserId(),
			Timestamp:   time.Now(),
		},
	})
}

func (d *Dispatcher) handleMessageRead(ctx context.Context, connectionId string, env Envelope) {
	var p AckPayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Malformed acknowledgement")
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	result, err := d.ledger.RecordRead(ctx, p.MessageId, session.UserId(), session.Room)
	if err != nil {
		d.logger.Error("Dispatcher", "Read record failed", map[string]interface{}{
			"message_id": p.MessageId, "error": err,
		})
		d.emitError(connectionId, "Failed to record read")
		return
	}
	if result == nil {
		return
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventReadUpdate,
		Data: ReadUpdatePayload{
			MessageId:      result.MessageId,
			Read:           true,
			ReadBy:         result.ReadBy,
			ReadByUser:     session.UserId(),
			ReadByUsername: session.DisplayName,
			Timestamp:      time.Now(),
		},
	})
}

func (d *Dispatcher) handleMarkAllRead(ctx context.Context, connectionId string) {
	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	affected, err := d.ledger.MarkAllRead(ctx, session.Room, session.UserId())
	if err != nil {
		d.logger.Error("Dispatcher", "Mark-all-read failed", map[string]interface{}{
			"room": session.Room, "error": err,
		})
		d.emitError(connectionId, "Failed to mark messages read")
		return
	}
	if len(affected) == 0 {
		return
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventMessagesMarked,
		Data: MessagesMarkedPayload{
			MessageIds:     affected,
			ReadBy:         session.UserId(),
			ReadByUsername: session.DisplayName,
			Timestamp:      time.Now(),
		},
	})
}

func (d *Dispatcher) handleTyping(ctx context.Context, connectionId string, env Envelope) {
	var p TypingPayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	// Stateless relay to everyone else in the room.
	d.emitter.Multicast(d.roomConnections(session.Room, connectionId), OutboundEvent{
		Event: EventUserTyping,
		Data: UserTypingPayload{
			Username:    session.Username,
			DisplayName: session.DisplayName,
			UserId:      session.UserId(),
			IsTyping:    p.IsTyping,
		},
	})
}

func (d *Dispatcher) handleUpdateStatus(ctx context.Context, connectionId string, env Envelope) {
	var p StatusPayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	if !session.Identity.IsGuest() {
		if err := d.identity.SetOnlineStatus(ctx, session.UserId(), p.Online); err != nil {
			d.logger.Warn("Dispatcher", "Failed to update online status", map[string]interface{}{
				"user_id": session.UserId(), "error": err,
			})
			d.emitError(connectionId, "Failed to update status")
			return
		}
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventUserStatusUpdate,
		Data: UserStatusPayload{
			UserId:      session.UserId(),
			Username:    session.Username,
			DisplayName: session.DisplayName,
			Online:      p.Online,
			LastSeen:    time.Now(),
		},
	})
}

func (d *Dispatcher) handleEditMessage(ctx context.Context, connectionId string, env Envelope) {
	var p EditMessagePayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Malformed edit")
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	msg, err := d.messages.GetMessage(ctx, p.MessageId)
	if err != nil {
		d.emitError(connectionId, "Failed to edit message")
		return
	}
	if msg == nil || msg.Deleted || msg.Room != session.Room {
		d.emitError(connectionId, "Cannot edit message")
		return
	}

	edited, err := d.messages.EditMessage(ctx, p.MessageId, session.UserId(), p.NewText)
	if err != nil {
		d.logger.Error("Dispatcher", "Message edit failed", map[string]interface{}{
			"message_id": p.MessageId, "error": err,
		})
		d.emitError(connectionId, "Failed to edit message")
		return
	}
	if !edited {
		d.emitError(connectionId, "Cannot edit message")
		return
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventMessageEdited,
		Data: MessageEditedPayload{
			MessageId: p.MessageId,
			NewText:   p.NewText,
			EditedBy:  session.UserId(),
			EditedAt:  time.Now(),
		},
	})
}

func (d *Dispatcher) handleDeleteMessage(ctx context.Context, connectionId string, env Envelope) {
	var p DeleteMessagePayload
	if err := decodePayload(d.validate, env.Data, &p); err != nil {
		d.emitError(connectionId, "Malformed delete")
		return
	}

	session, ok := d.registry.FindByConnection(connectionId)
	if !ok {
		return
	}

	msg, err := d.messages.GetMessage(ctx, p.MessageId)
	if err != nil {
		d.emitError(connectionId, "Failed to delete message")
		return
	}
	if msg == nil || msg.Deleted || msg.Room != session.Room || msg.AuthorId != session.UserId() {
		d.emitError(connectionId, "Cannot delete message")
		return
	}

	if err := d.messages.SoftDelete(ctx, p.MessageId); err != nil {
		d.logger.Error("Dispatcher", "Message delete failed", map[string]interface{}{
			"message_id": p.MessageId, "error": err,
		})
		d.emitError(connectionId, "Failed to delete message")
		return
	}

	d.emitter.Multicast(d.roomConnections(session.Room, ""), OutboundEvent{
		Event: EventMessageDeleted,
		Data: MessageDeletedPayload{
			MessageId: p.MessageId,
			DeletedBy: session.UserId(),
			Timestamp: time.Now(),
		},
	})
}

// handleLeave is the shared teardown for leave-room and disconnect.
func (d *Dispatcher) handleLeave(ctx context.Context, connectionId string) {
	session, ok := d.registry.Leave(connectionId)
	if !ok {
		return
	}
	d.finishLeave(ctx, session)
}

// CleanupInactiveSessions evicts sessions idle for longer than maxIdle and
// runs the normal leave side effects for each, so remaining members see the
// departures. Returns the number of evicted sessions.
func (d *Dispatcher) CleanupInactiveSessions(ctx context.Context, maxIdle time.Duration) int {
	removed := d.registry.CleanupInactive(maxIdle)
	for _, session := range removed {
		cleanupCtx, cancel := context.WithTimeout(ctx, d.storeTimeout)
		d.finishLeave(cleanupCtx, session)
		cancel()
	}
	return len(removed)
}

func (d *Dispatcher) finishLeave(ctx context.Context, session *Session) {
	if !session.Identity.IsGuest() {
		if err := d.identity.SetOnlineStatus(ctx, session.UserId(), false); err != nil {
			d.logger.Warn("Dispatcher", "Failed to set offline status", map[string]interface{}{
				"user_id": session.UserId(), "error": err,
			})
		}
	}

	d.logger.Info("Dispatcher", "User left room", map[string]interface{}{
		"room": session.Room, "user_id": session.UserId(), "connection_id": session.ConnectionId,
	})

	now := time.Now()
	remaining := d.roomConnections(session.Room, "")

	d.emitter.Multicast(remaining, OutboundEvent{
		Event: EventUserLeft,
		Data: UserLeftPayload{
			Username:    session.Username,
			DisplayName: session.DisplayName,
			UserId:      session.UserId(),
			Message:     fmt.Sprintf("%s has left the chat", session.DisplayName),
			Timestamp:   now,
		},
	})
	d.emitter.Multicast(remaining, OutboundEvent{
		Event: EventUserStatusUpdate,
		Data: UserStatusPayload{
			UserId:      session.UserId(),
			Username:    session.Username,
			DisplayName: session.DisplayName,
			Online:      false,
			LastSeen:    now,
		},
	})

	d.emitRoomUsers(ctx, session.Room)

	d.publish("USER_LEFT", session.Room, map[string]interface{}{
		"user_id": session.UserId(),
		"room":    session.Room,
	})
}

// resolveIdentity turns a join payload into an Identity, preferring a valid
// token, then a known userId, then guest. Only store errors are returned;
// invalid tokens and unknown users just fall through.
func (d *Dispatcher) resolveIdentity(ctx context.Context, connectionId string, p JoinPayload) (Identity, *UserProfile, error) {
	if p.Token != "" {
		claims, err := d.tokens.Verify(p.Token)
		if err != nil {
			d.logger.Warn("Dispatcher", "Token verification failed", map[string]interface{}{
				"connection_id": connectionId, "error": err,
			})
		} else {
			profile, err := d.identity.FindUserById(ctx, claims.UserId)
			if err != nil {
				return Identity{}, nil, err
			}
			return AuthenticatedIdentity(claims.UserId), profile, nil
		}
	}

	if p.UserId != "" {
		profile, err := d.identity.FindUserById(ctx, p.UserId)
		if err != nil {
			return Identity{}, nil, err
		}
		if profile != nil {
			return AuthenticatedIdentity(p.UserId), profile, nil
		}
	}

	// A guest supplying a registered username gets that account's display
	// metadata but stays a guest; identity claims require a token or userId.
	if p.Username != "" {
		profile, err := d.identity.FindUserByUsernameOrEmail(ctx, p.Username)
		if err != nil {
			return Identity{}, nil, err
		}
		if profile != nil {
			return GuestIdentity(connectionId), profile, nil
		}
	}

	return GuestIdentity(connectionId), nil, nil
}

// roomConnections computes the broadcast target set for a room, optionally
// excluding one connection.
func (d *Dispatcher) roomConnections(room, except string) []string {
	sessions := d.registry.ListByRoom(room)
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if s.ConnectionId == except {
			continue
		}
		out = append(out, s.ConnectionId)
	}
	return out
}

// emitRoomUsers broadcasts the refreshed membership list to the whole room.
func (d *Dispatcher) emitRoomUsers(ctx context.Context, room string) {
	sessions := d.registry.ListByRoom(room)

	views := make([]RoomUserView, len(sessions))
	conns := make([]string, len(sessions))
	for i, s := range sessions {
		view := RoomUserView{
			SessionId:   s.SessionId,
			UserId:      s.UserId(),
			Username:    s.Username,
			DisplayName: s.DisplayName,
			Avatar:      s.Avatar,
			Room:        s.Room,
			JoinedAt:    s.JoinedAt,
			// A live guest session is online by definition.
			Online: true,
		}
		if !s.Identity.IsGuest() {
			presence, err := d.identity.GetOnlineStatus(ctx, s.UserId())
			if err == nil {
				view.Online = presence.Online
				if !presence.LastSeen.IsZero() {
					lastSeen := presence.LastSeen
					view.LastSeen = &lastSeen
				}
			}
		}
		views[i] = view
		conns[i] = s.ConnectionId
	}

	d.emitter.Multicast(conns, OutboundEvent{Event: EventRoomUsers, Data: views})
}

func (d *Dispatcher) messageView(msg *Message) MessageView {
	deliveredTo := msg.DeliveredTo
	if deliveredTo == nil {
		deliveredTo = []string{}
	}
	readBy := msg.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return MessageView{
		Id:          msg.Id,
		Username:    msg.AuthorUsername,
		DisplayName: msg.AuthorDisplayName,
		Avatar:      msg.AuthorAvatar,
		UserId:      msg.AuthorId,
		Message:     msg.Text,
		Room:        msg.Room,
		Timestamp:   msg.CreatedAt,
		EditedAt:    msg.EditedAt,
		Delivered:   len(deliveredTo) > 0,
		DeliveredTo: deliveredTo,
		Read:        len(readBy) > 0,
		ReadBy:      readBy,
	}
}

func (d *Dispatcher) emitError(connectionId, message string) {
	d.emitter.Unicast(connectionId, OutboundEvent{
		Event: EventError,
		Data:  ErrorPayload{Message: message},
	})
}

func (d *Dispatcher) publish(eventType, room string, payload map[string]interface{}) {
	if d.bus == nil {
		return
	}
	d.bus.PublishChatEvent(eventType, room, payload)
}

func guestName(connectionId string) string {
	if len(connectionId) > 8 {
		connectionId = connectionId[:8]
	}
	return "guest-" + connectionId
}
