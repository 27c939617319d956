package kafka

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, log.WithField("component", "kafka-producer-test"))

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var event OrderEvent
		if err := json.Unmarshal(value, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeOrderReady || event.OrderID != "1001" {
			return fmt.Errorf("unexpected event %+v", event)
		}
		return nil
	})

	event := NewOrderEvent(EventTypeOrderReady, "1001", domain.OrderStatusReady, nil)
	if err := producer.PublishEvent(TopicOrderEvents, "1001", event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer, nil)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderEvent(EventTypeOrderCancelled, "1002", domain.OrderStatusCancelled, nil)
	if err := producer.PublishEvent(TopicOrderEvents, "1002", event); err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEvent(t *testing.T) {
	order, err := domain.NewSingleOrder(
		domain.Coffee{Name: "Cappuccino", Size: domain.SizeMedium},
		300,
		domain.WhippedCream(),
	)
	if err != nil {
		t.Fatalf("build order: %v", err)
	}

	event := NewOrderEvent(EventTypeOrderPlaced, "1001", domain.OrderStatusPlaced, order)

	if event.EventID == "" {
		t.Error("expected generated event id")
	}
	if event.Description != "Cappuccino + Whipped Cream" {
		t.Errorf("unexpected description %q", event.Description)
	}
	if event.TotalMinor != 350 || event.ItemCount != 1 {
		t.Errorf("unexpected totals: %d / %d", event.TotalMinor, event.ItemCount)
	}
	if event.Status != "placed" {
		t.Errorf("expected status placed, got %q", event.Status)
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}
