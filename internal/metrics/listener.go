package metrics

import "github.com/vladislavdragonenkov/coffeeshop/internal/domain"

// ListenerName — имя слушателя метрик на шине.
const ListenerName = "metrics"

// OrderListener переводит события жизненного цикла в метрики.
type OrderListener struct {
	metrics *DeskMetrics
}

// NewOrderListener создаёт слушателя поверх метрик.
func NewOrderListener(metrics *DeskMetrics) *OrderListener {
	return &OrderListener{metrics: metrics}
}

func (l *OrderListener) Name() string { return ListenerName }

func (l *OrderListener) OnPlaced(_ string, order domain.OrderComponent) error {
	var total int64
	if order != nil {
		total = order.TotalMinor()
	}
	l.metrics.RecordOrderPlaced(total)
	return nil
}

// OnRestored не считает заказ новым: учитывается только возврат в статус.
func (l *OrderListener) OnRestored(_ string, _ domain.OrderComponent, status domain.OrderStatus) error {
	l.metrics.RecordStatus(status)
	return nil
}

func (l *OrderListener) OnPreparing(string) error {
	l.metrics.RecordStatus(domain.OrderStatusPreparing)
	return nil
}

func (l *OrderListener) OnReady(string) error {
	l.metrics.RecordStatus(domain.OrderStatusReady)
	return nil
}

func (l *OrderListener) OnCancelled(string) error {
	l.metrics.RecordOrderCancelled()
	return nil
}

var (
	_ domain.PlacedHandler    = (*OrderListener)(nil)
	_ domain.RestoredHandler  = (*OrderListener)(nil)
	_ domain.PreparingHandler = (*OrderListener)(nil)
	_ domain.ReadyHandler     = (*OrderListener)(nil)
	_ domain.CancelledHandler = (*OrderListener)(nil)
)
