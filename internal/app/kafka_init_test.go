package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/coffeeshop/internal/service/outbox"
)

func TestSplitBrokers(t *testing.T) {
	require.Nil(t, splitBrokers(""))
	require.Nil(t, splitBrokers(" , "))
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, splitBrokers(" kafka-1:9092, ,kafka-2:9092 "))
}

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer("  ", log.WithField("test", "kafka"))
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestInitKafkaProducer_UnreachableBroker(t *testing.T) {
	producer, err := initKafkaProducer("127.0.0.1:1", log.WithField("test", "kafka"))
	require.Error(t, err)
	require.Nil(t, producer)
}

func TestOutboxPublisher_FallsBackToLog(t *testing.T) {
	publisher := outboxPublisher(nil, "ignored", log.WithField("test", "kafka"))
	require.IsType(t, &outbox.LogPublisher{}, publisher)
}

func TestCloseKafka_Nil(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}
