package kafka

import (
	"errors"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// OutboxTopicPublisher публикует сообщения outbox в Kafka topic.
// Payload уже содержит сериализованный OrderEvent, ключ сообщения — идентификатор заказа.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
}

// NewOutboxPublisher создаёт Kafka-паблишер для outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{producer: producer, topic: topic}
}

func (p *OutboxTopicPublisher) Publish(msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errors.New("kafka outbox publisher is not initialized")
	}

	key := msg.OrderID
	if key == "" {
		key = msg.ID
	}
	return p.producer.publishRaw(p.topic, key, msg.Payload)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
