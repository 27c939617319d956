package domain

// Listener — подписчик шины уведомлений. Имя уникально в пределах шины.
// Слушатель реализует любое подмножество интерфейсов *Handler ниже.
type Listener interface {
	Name() string
}

// PlacedHandler получает уведомление о новом заказе.
type PlacedHandler interface {
	OnPlaced(orderID string, order OrderComponent) error
}

// RestoredHandler получает уведомление о заказе, возвращённом отменой CancelOrder,
// вместе с восстановленным статусом. Слушатель без этого интерфейса получает
// OnPlaced и затем уведомление, соответствующее статусу.
type RestoredHandler interface {
	OnRestored(orderID string, order OrderComponent, status OrderStatus) error
}

// PreparingHandler получает уведомление о начале приготовления.
type PreparingHandler interface {
	OnPreparing(orderID string) error
}

// ReadyHandler получает уведомление о готовности заказа.
type ReadyHandler interface {
	OnReady(orderID string) error
}

// CancelledHandler получает уведомление об отмене заказа.
type CancelledHandler interface {
	OnCancelled(orderID string) error
}

// Notifier рассылает события жизненного цикла. Реализуется шиной уведомлений.
type Notifier interface {
	NotifyPlaced(orderID string, order OrderComponent)
	NotifyRestored(orderID string, order OrderComponent, status OrderStatus)
	NotifyPreparing(orderID string)
	NotifyReady(orderID string)
	NotifyCancelled(orderID string)
}

// NopNotifier ничего не рассылает.
type NopNotifier struct{}

func (NopNotifier) NotifyPlaced(string, OrderComponent)                {}
func (NopNotifier) NotifyRestored(string, OrderComponent, OrderStatus) {}
func (NopNotifier) NotifyPreparing(string)                             {}
func (NopNotifier) NotifyReady(string)                                 {}
func (NopNotifier) NotifyCancelled(string)                             {}

var _ Notifier = NopNotifier{}
