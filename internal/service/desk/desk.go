package desk

import (
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/menu"
	"github.com/vladislavdragonenkov/coffeeshop/internal/metrics"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/command"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/notify"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/payment"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
)

// Config описывает зависимости стойки. Пустые поля заменяются значениями по умолчанию.
type Config struct {
	// Barista собирает напитки; по умолчанию стандартное меню.
	Barista *menu.Barista
	// Timeline хранит журнал заказов; по умолчанию in-memory.
	Timeline domain.TimelineRepository
	// Metrics включает метрики; nil отключает их.
	Metrics *metrics.DeskMetrics
	// Out получает SMS клиенту; по умолчанию io.Discard.
	Out    io.Writer
	Logger *log.Entry
	// OnListenerFailure дополнительно получает сбои слушателей.
	OnListenerFailure notify.FailureHandler
}

// Desk — фасад стойки: меню, заказы, история команд, уведомления и оплата.
// Все изменяющие операции сериализуются одним мьютексом.
type Desk struct {
	mu sync.Mutex

	barista  *menu.Barista
	store    domain.OrderStore
	bus      *notify.Bus
	history  *command.History
	payments *payment.Processor
	timeline domain.TimelineRepository
	metrics  *metrics.DeskMetrics
	out      io.Writer
	logger   *log.Entry

	customer    string
	lastOrderID string
}

// New собирает стойку и подписывает служебных слушателей (журнал и метрики).
func New(cfg Config) (*Desk, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "desk")
	}
	if cfg.Barista == nil {
		cfg.Barista = menu.NewBarista(nil)
	}
	if cfg.Timeline == nil {
		cfg.Timeline = memory.NewTimelineRepository()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}

	busOpts := []notify.Option{
		notify.WithLogger(logger.WithField("component", "notify-bus")),
		notify.WithFailureHandler(cfg.OnListenerFailure),
	}
	var commandMetrics command.Metrics
	var paymentMetrics payment.Metrics
	if cfg.Metrics != nil {
		busOpts = append(busOpts, notify.WithFailureMetrics(cfg.Metrics))
		commandMetrics = cfg.Metrics
		paymentMetrics = cfg.Metrics
	}
	bus := notify.NewBus(busOpts...)

	d := &Desk{
		barista:  cfg.Barista,
		store:    memory.NewOrderStore(bus, logger.WithField("component", "order-store")),
		bus:      bus,
		history:  command.NewHistory(logger.WithField("component", "command-history"), commandMetrics),
		payments: payment.NewProcessor(logger.WithField("component", "payment-processor"), paymentMetrics),
		timeline: cfg.Timeline,
		metrics:  cfg.Metrics,
		out:      cfg.Out,
		logger:   logger,
	}

	if err := bus.Subscribe(notify.NewTimelineRecorder(cfg.Timeline)); err != nil {
		return nil, fmt.Errorf("subscribe timeline recorder: %w", err)
	}
	if cfg.Metrics != nil {
		if err := bus.Subscribe(metrics.NewOrderListener(cfg.Metrics)); err != nil {
			return nil, fmt.Errorf("subscribe metrics listener: %w", err)
		}
	}
	return d, nil
}

// SetCustomer заменяет слушателя SMS клиенту. Пустое имя отключает SMS.
func (d *Desk) SetCustomer(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name = strings.TrimSpace(name)
	d.bus.Unsubscribe(notify.CustomerMessengerName)
	d.customer = name
	if name == "" {
		return nil
	}
	return d.bus.Subscribe(notify.NewCustomerMessenger(name, d.out))
}

// Customer возвращает имя текущего клиента.
func (d *Desk) Customer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.customer
}

func (d *Desk) Subscribe(listener domain.Listener) error { return d.bus.Subscribe(listener) }

func (d *Desk) Unsubscribe(name string) bool { return d.bus.Unsubscribe(name) }

// Listeners возвращает имена подписчиков в порядке подписки.
func (d *Desk) Listeners() []string { return d.bus.Listeners() }

// OrderSingle готовит напиток без добавок.
func (d *Desk) OrderSingle(typ domain.CoffeeType, req menu.Request) (*domain.SingleOrder, error) {
	return d.OrderDecorated(typ, req)
}

// OrderDecorated готовит напиток и применяет добавки в указанном порядке.
func (d *Desk) OrderDecorated(typ domain.CoffeeType, req menu.Request, modifiers ...domain.Modifier) (*domain.SingleOrder, error) {
	coffee, base, err := d.barista.Brew(typ, req)
	if err != nil {
		return nil, err
	}
	return domain.NewSingleOrder(coffee, base, modifiers...)
}

// OrderPopular готовит напиток с фирменными добавками.
func (d *Desk) OrderPopular(typ domain.CoffeeType, req menu.Request) (*domain.SingleOrder, error) {
	return d.OrderDecorated(typ, req, menu.Popular(typ)...)
}

// NewCombo создаёт пустое комбо.
func (d *Desk) NewCombo(name string, discountPercent int) (*domain.ComboOrder, error) {
	return domain.NewComboOrder(name, discountPercent)
}

// Place размещает заказ через историю команд и возвращает его идентификатор.
func (d *Desk) Place(order domain.OrderComponent) (string, error) {
	if domain.IsNilOrder(order) {
		return "", domain.ErrOrderRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := command.NewPlaceOrder(d.store, order)
	d.history.Execute(cmd)
	d.lastOrderID = cmd.OrderID()
	d.refreshOpenOrders()

	d.logger.WithFields(log.Fields{
		"order_id": cmd.OrderID(),
		"total":    domain.FormatMinor(order.TotalMinor()),
	}).Info("order placed")
	return cmd.OrderID(), nil
}

// Cancel отменяет заказ. Неизвестный идентификатор не считается ошибкой.
func (d *Desk) Cancel(orderID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.history.Execute(command.NewCancelOrder(d.store, orderID))
	d.refreshOpenOrders()
}

// UpdateStatus меняет статус заказа через историю команд.
func (d *Desk) UpdateStatus(orderID string, status domain.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.history.Execute(command.NewUpdateStatus(d.store, orderID, status))
	d.refreshOpenOrders()
	return nil
}

// Undo отменяет последнюю команду. Отмена размещения переводит LastOrderID
// на последний оставшийся заказ.
func (d *Desk) Undo() (command.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.history.Undo()
	if err != nil {
		return rec, err
	}
	if place, ok := rec.Command().(*command.PlaceOrder); ok && place.OrderID() == d.lastOrderID {
		d.lastOrderID = ""
		if orders := d.store.List(); len(orders) > 0 {
			d.lastOrderID = orders[len(orders)-1].ID
		}
	}
	d.refreshOpenOrders()
	return rec, nil
}

// Redo повторяет последнюю отменённую команду.
func (d *Desk) Redo() (command.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec, err := d.history.Redo()
	if err != nil {
		return rec, err
	}
	if place, ok := rec.Command().(*command.PlaceOrder); ok {
		d.lastOrderID = place.OrderID()
	}
	d.refreshOpenOrders()
	return rec, nil
}

func (d *Desk) CanUndo() bool { return d.history.CanUndo() }

func (d *Desk) CanRedo() bool { return d.history.CanRedo() }

// History возвращает применённые команды от старых к новым.
func (d *Desk) History() []command.Record { return d.history.Records() }

// Orders возвращает все заказы по возрастанию идентификатора.
func (d *Desk) Orders() []domain.OrderRecord { return d.store.List() }

// LastOrderID возвращает идентификатор последнего размещённого заказа.
func (d *Desk) LastOrderID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastOrderID
}

// Status возвращает статус заказа или domain.ErrOrderNotFound.
func (d *Desk) Status(orderID string) (domain.OrderStatus, error) {
	status, ok := d.store.Status(orderID)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return status, nil
}

// Entry возвращает заказ вместе со статусом или domain.ErrOrderNotFound.
func (d *Desk) Entry(orderID string) (domain.OrderEntry, error) {
	entry, ok := d.store.Entry(orderID)
	if !ok {
		return domain.OrderEntry{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	return entry, nil
}

// Timeline возвращает журнал событий заказа.
func (d *Desk) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	return d.timeline.List(orderID)
}

// SetPayment выбирает способ оплаты.
func (d *Desk) SetPayment(strategy payment.Strategy) { d.payments.SetStrategy(strategy) }

// PaymentMethod возвращает название текущего способа оплаты.
func (d *Desk) PaymentMethod() string { return d.payments.Method() }

// ProcessPayment списывает произвольную сумму текущим способом оплаты.
func (d *Desk) ProcessPayment(amountMinor int64) (payment.Receipt, error) {
	return d.payments.Process(amountMinor)
}

// PayOrder оплачивает заказ в статусе placed и передаёт его бариста.
// При отказе статус заказа не меняется.
func (d *Desk) PayOrder(orderID string) (payment.Receipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.store.Entry(orderID)
	if !ok {
		return payment.Receipt{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if entry.Status != domain.OrderStatusPlaced {
		return payment.Receipt{}, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotPayable, orderID, entry.Status)
	}

	receipt, err := d.payments.Process(entry.Order.TotalMinor())
	if err != nil {
		return payment.Receipt{}, fmt.Errorf("pay order %s: %w", orderID, err)
	}

	d.history.Execute(command.NewUpdateStatus(d.store, orderID, domain.OrderStatusPreparing))
	d.refreshOpenOrders()
	return receipt, nil
}

// Summary печатает сводку заказа.
func (d *Desk) Summary(order domain.OrderComponent) string {
	var b strings.Builder
	b.WriteString("========== ORDER SUMMARY ==========\n")
	for _, line := range order.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("-----------------------------------\n")
	fmt.Fprintf(&b, "Total Items: %d\n", order.ItemCount())
	fmt.Fprintf(&b, "Total Cost: %s\n", domain.FormatMinor(order.TotalMinor()))
	b.WriteString("===================================\n")
	return b.String()
}

// refreshOpenOrders вызывается под d.mu.
func (d *Desk) refreshOpenOrders() {
	if d.metrics == nil {
		return
	}
	open := 0
	for _, rec := range d.store.List() {
		if rec.Entry.Status == domain.OrderStatusPlaced || rec.Entry.Status == domain.OrderStatusPreparing {
			open++
		}
	}
	d.metrics.SetOpenOrders(open)
}
