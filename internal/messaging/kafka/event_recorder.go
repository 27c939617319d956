package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// EventRecorderName — имя слушателя на шине уведомлений.
const EventRecorderName = "kafka-events"

// EventRecorder кладёт события жизненного цикла в outbox для последующей публикации в Kafka.
type EventRecorder struct {
	outbox domain.OutboxRepository
}

// NewEventRecorder создаёт слушателя поверх outbox.
func NewEventRecorder(outbox domain.OutboxRepository) *EventRecorder {
	return &EventRecorder{outbox: outbox}
}

func (r *EventRecorder) Name() string { return EventRecorderName }

func (r *EventRecorder) OnPlaced(orderID string, order domain.OrderComponent) error {
	return r.record(NewOrderEvent(EventTypeOrderPlaced, orderID, domain.OrderStatusPlaced, order))
}

// OnRestored публикует восстановленный заказ с тем статусом, который держит хранилище.
func (r *EventRecorder) OnRestored(orderID string, order domain.OrderComponent, status domain.OrderStatus) error {
	return r.record(NewOrderEvent(EventTypeOrderRestored, orderID, status, order))
}

func (r *EventRecorder) OnPreparing(orderID string) error {
	return r.record(NewOrderEvent(EventTypeOrderPreparing, orderID, domain.OrderStatusPreparing, nil))
}

func (r *EventRecorder) OnReady(orderID string) error {
	return r.record(NewOrderEvent(EventTypeOrderReady, orderID, domain.OrderStatusReady, nil))
}

func (r *EventRecorder) OnCancelled(orderID string) error {
	return r.record(NewOrderEvent(EventTypeOrderCancelled, orderID, domain.OrderStatusCancelled, nil))
}

func (r *EventRecorder) record(event *OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	_, err = r.outbox.Enqueue(domain.OutboxMessage{
		ID:        event.EventID,
		OrderID:   event.OrderID,
		EventType: string(event.EventType),
		Payload:   payload,
		CreatedAt: event.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("enqueue %s for order %s: %w", event.EventType, event.OrderID, err)
	}
	return nil
}

var (
	_ domain.PlacedHandler    = (*EventRecorder)(nil)
	_ domain.RestoredHandler  = (*EventRecorder)(nil)
	_ domain.PreparingHandler = (*EventRecorder)(nil)
	_ domain.ReadyHandler     = (*EventRecorder)(nil)
	_ domain.CancelledHandler = (*EventRecorder)(nil)
)
