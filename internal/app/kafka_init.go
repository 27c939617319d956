package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/outbox"
)

// splitBrokers разбирает список брокеров, отбрасывая пустые элементы.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// initKafkaProducer создаёт producer, если брокеры заданы.
// Пустой список не считается ошибкой: события уходят в лог.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList, logger.WithField("component", "kafka-producer"))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, order events will be logged only")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// outboxPublisher выбирает, куда worker переносит события outbox.
func outboxPublisher(producer *kafka.Producer, topic string, logger *log.Entry) domain.OutboxPublisher {
	if producer != nil {
		return kafka.NewOutboxPublisher(producer, topic)
	}
	return outbox.NewLogPublisher(logger.WithField("component", "outbox-log-publisher"))
}

// closeKafka закрывает producer, если он был создан.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
