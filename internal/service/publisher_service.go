package service

import (
	"encoding/json"
	"time"

	"realtime-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChatEventMessage is the bus payload for one chat domain event.
type ChatEventMessage struct {
	EventType string                 `json:"event_type"`
	Room      string                 `json:"room"`
	Payload   map[string]interface{} `json:"payload"`
	EmittedAt time.Time              `json:"emitted_at"`
}

// IPublisherService pushes chat domain events onto the in-process bus.
// Implements chat.EventPublisher; failures are logged and swallowed so the
// hot path never blocks on the audit pipeline.
type IPublisherService interface {
	PublishChatEvent(eventType, room string, payload map[string]interface{})
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    log,
	}
}

func (s *publisherService) PublishChatEvent(eventType, room string, payload map[string]interface{}) {
	data, err := json.Marshal(ChatEventMessage{
		EventType: eventType,
		Room:      room,
		Payload:   payload,
		EmittedAt: time.Now(),
	})
	if err != nil {
		s.logger.Error("Publisher", "Failed to marshal chat event", map[string]interface{}{"event_type": eventType, "error": err})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		s.logger.Error("Publisher", "Failed to publish chat event", map[string]interface{}{"event_type": eventType, "error": err})
	}
}
