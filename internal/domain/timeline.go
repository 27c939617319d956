package domain

import "time"

// Типы событий timeline.
const (
	TimelineOrderPlaced    = "OrderPlaced"
	TimelineOrderPreparing = "OrderPreparing"
	TimelineOrderReady     = "OrderReady"
	TimelineOrderCancelled = "OrderCancelled"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
