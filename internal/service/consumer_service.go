package service

import (
	"context"
	"encoding/json"

	"realtime-chat-be/internal/model"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/pkg/events"
	pktNats "realtime-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process chat event bus: every event is
// appended to the audit trail and exported to NATS for downstream consumers.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	eventLogRepo  contract.EventLogRepository
	natsPublisher *pktNats.Publisher
	persistAudit  bool
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	eventLogRepo contract.EventLogRepository,
	natsPublisher *pktNats.Publisher,
	persistAudit bool,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		eventLogRepo:  eventLogRepo,
		natsPublisher: natsPublisher,
		persistAudit:  persistAudit,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event ChatEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal bus message", map[string]interface{}{"error": err})
		// Ack malformed messages to prevent infinite retry.
		msg.Ack()
		return
	}

	if cs.persistAudit {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			cs.logger.Error("Consumer", "Failed to marshal event payload", map[string]interface{}{"error": err})
			msg.Ack()
			return
		}
		logRow := &model.EventLog{
			EventType:  event.EventType,
			Room:       event.Room,
			Payload:    payload,
			OccurredAt: event.EmittedAt,
		}
		if err := cs.eventLogRepo.Create(ctx, logRow); err != nil {
			cs.logger.Error("Consumer", "Failed to persist event log", map[string]interface{}{
				"event_type": event.EventType, "error": err,
			})
			msg.Nack()
			return
		}
	}

	if cs.natsPublisher != nil {
		evt := events.BaseEvent{
			Type:       event.EventType,
			Data:       event.Payload,
			OccurredAt: event.EmittedAt,
		}
		if err := cs.natsPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "NATS export failed", map[string]interface{}{
				"event_type": event.EventType, "error": err,
			})
			// The audit row is already written; do not replay it.
		}
	}

	msg.Ack()
}
