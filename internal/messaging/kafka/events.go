package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderPlaced    EventType = "order.placed"
	EventTypeOrderRestored  EventType = "order.restored"
	EventTypeOrderPreparing EventType = "order.preparing"
	EventTypeOrderReady     EventType = "order.ready"
	EventTypeOrderCancelled EventType = "order.cancelled"
)

// TopicOrderEvents — topic событий жизненного цикла заказов.
const TopicOrderEvents = "coffeeshop.order.events"

// OrderEvent представляет событие заказа.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   EventType `json:"event_type"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	TotalMinor  int64     `json:"total_minor,omitempty"`
	ItemCount   int       `json:"item_count,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderEvent создаёт событие; order заполняется только для order.placed и order.restored.
func NewOrderEvent(eventType EventType, orderID string, status domain.OrderStatus, order domain.OrderComponent) *OrderEvent {
	event := &OrderEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		Status:    string(status),
		Timestamp: time.Now().UTC(),
	}
	if order != nil {
		event.Description = order.Description()
		event.TotalMinor = order.TotalMinor()
		event.ItemCount = order.ItemCount()
	}
	return event
}
