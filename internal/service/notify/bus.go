package notify

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Имена событий в логах и FailureHandler.
const (
	EventPlaced    = "placed"
	EventRestored  = "restored"
	EventPreparing = "preparing"
	EventReady     = "ready"
	EventCancelled = "cancelled"
)

// FailureHandler получает ошибки слушателей. Вызывается синхронно из Notify*.
type FailureHandler func(listener, event string, err error)

// FailureMetrics учитывает сбои слушателей.
type FailureMetrics interface {
	RecordListenerFailure(listener string)
}

// Option настраивает Bus.
type Option func(*Bus)

// WithLogger задаёт logger шины.
func WithLogger(logger *log.Entry) Option {
	return func(b *Bus) { b.logger = logger }
}

// WithFailureHandler задаёт обработчик сбоев слушателей.
func WithFailureHandler(handler FailureHandler) Option {
	return func(b *Bus) { b.onFailure = handler }
}

// WithFailureMetrics задаёт счётчик сбоев слушателей.
func WithFailureMetrics(metrics FailureMetrics) Option {
	return func(b *Bus) { b.metrics = metrics }
}

// Bus рассылает события жизненного цикла подписчикам в порядке подписки.
// Ошибка или паника одного слушателя не мешает доставке остальным.
type Bus struct {
	mu        sync.RWMutex
	listeners []domain.Listener

	logger    *log.Entry
	onFailure FailureHandler
	metrics   FailureMetrics
}

// NewBus создаёт пустую шину.
func NewBus(opts ...Option) *Bus {
	bus := &Bus{}
	for _, opt := range opts {
		opt(bus)
	}
	if bus.logger == nil {
		bus.logger = log.WithField("component", "notify-bus")
	}
	return bus
}

// Subscribe добавляет слушателя в конец списка.
func (b *Bus) Subscribe(listener domain.Listener) error {
	if listener == nil {
		return fmt.Errorf("%w: nil listener", domain.ErrListenerNoCapability)
	}
	if !handlesAny(listener) {
		return fmt.Errorf("%w: %s", domain.ErrListenerNoCapability, listener.Name())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, existing := range b.listeners {
		if existing.Name() == listener.Name() {
			return fmt.Errorf("%w: %s", domain.ErrListenerExists, listener.Name())
		}
	}
	b.listeners = append(b.listeners, listener)
	b.logger.WithField("listener", listener.Name()).Debug("listener subscribed")
	return nil
}

// Unsubscribe удаляет слушателя по имени и сообщает, был ли он подписан.
func (b *Bus) Unsubscribe(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, existing := range b.listeners {
		if existing.Name() == name {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			b.logger.WithField("listener", name).Debug("listener unsubscribed")
			return true
		}
	}
	return false
}

// Listeners возвращает имена подписчиков в порядке подписки.
func (b *Bus) Listeners() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.listeners))
	for _, l := range b.listeners {
		names = append(names, l.Name())
	}
	return names
}

func (b *Bus) NotifyPlaced(orderID string, order domain.OrderComponent) {
	for _, l := range b.snapshot() {
		if h, ok := l.(domain.PlacedHandler); ok {
			b.deliver(l.Name(), EventPlaced, orderID, func() error { return h.OnPlaced(orderID, order) })
		}
	}
}

// NotifyRestored доставляет OnRestored слушателям, которые его поддерживают.
// Остальные получают OnPlaced, а для preparing и ready ещё и уведомление о статусе.
func (b *Bus) NotifyRestored(orderID string, order domain.OrderComponent, status domain.OrderStatus) {
	for _, l := range b.snapshot() {
		if h, ok := l.(domain.RestoredHandler); ok {
			b.deliver(l.Name(), EventRestored, orderID, func() error { return h.OnRestored(orderID, order, status) })
			continue
		}
		if h, ok := l.(domain.PlacedHandler); ok {
			b.deliver(l.Name(), EventPlaced, orderID, func() error { return h.OnPlaced(orderID, order) })
		}
		switch status {
		case domain.OrderStatusPreparing:
			if h, ok := l.(domain.PreparingHandler); ok {
				b.deliver(l.Name(), EventPreparing, orderID, func() error { return h.OnPreparing(orderID) })
			}
		case domain.OrderStatusReady:
			if h, ok := l.(domain.ReadyHandler); ok {
				b.deliver(l.Name(), EventReady, orderID, func() error { return h.OnReady(orderID) })
			}
		}
	}
}

func (b *Bus) NotifyPreparing(orderID string) {
	for _, l := range b.snapshot() {
		if h, ok := l.(domain.PreparingHandler); ok {
			b.deliver(l.Name(), EventPreparing, orderID, func() error { return h.OnPreparing(orderID) })
		}
	}
}

func (b *Bus) NotifyReady(orderID string) {
	for _, l := range b.snapshot() {
		if h, ok := l.(domain.ReadyHandler); ok {
			b.deliver(l.Name(), EventReady, orderID, func() error { return h.OnReady(orderID) })
		}
	}
}

func (b *Bus) NotifyCancelled(orderID string) {
	for _, l := range b.snapshot() {
		if h, ok := l.(domain.CancelledHandler); ok {
			b.deliver(l.Name(), EventCancelled, orderID, func() error { return h.OnCancelled(orderID) })
		}
	}
}

// snapshot копирует список, чтобы слушатели могли (от)писываться во время рассылки.
func (b *Bus) snapshot() []domain.Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Listener(nil), b.listeners...)
}

func (b *Bus) deliver(name, event, orderID string, call func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("listener panic: %v", r)
			}
		}()
		err = call()
	}()
	if err == nil {
		return
	}

	b.logger.WithError(err).WithFields(log.Fields{
		"listener": name,
		"event":    event,
		"order_id": orderID,
	}).Warn("listener failed")
	if b.metrics != nil {
		b.metrics.RecordListenerFailure(name)
	}
	if b.onFailure != nil {
		b.onFailure(name, event, err)
	}
}

func handlesAny(l domain.Listener) bool {
	switch l.(type) {
	case domain.PlacedHandler, domain.RestoredHandler, domain.PreparingHandler, domain.ReadyHandler, domain.CancelledHandler:
		return true
	}
	return false
}

var _ domain.Notifier = (*Bus)(nil)
