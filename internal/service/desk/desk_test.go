package desk

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/menu"
	"github.com/vladislavdragonenkov/coffeeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/coffeeshop/internal/metrics"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/command"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/notify"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/payment"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
)

func newDesk(t *testing.T, out *bytes.Buffer) *Desk {
	t.Helper()
	d, err := New(Config{
		Out:     out,
		Metrics: metrics.NewDeskMetricsWithRegisterer(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	return d
}

func TestDesk_OrderBuilders(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})

	single, err := d.OrderSingle(domain.CoffeeTypeLatte, menu.NewRequest())
	require.NoError(t, err)
	require.EqualValues(t, 350, single.TotalMinor())
	require.Equal(t, "Latte", single.Description())

	decorated, err := d.OrderDecorated(domain.CoffeeTypeEspresso, menu.NewRequest(menu.WithSize(domain.SizeLarge)),
		domain.ExtraShot(), domain.FlavorSyrup("Hazelnut"))
	require.NoError(t, err)
	require.EqualValues(t, 325+75+60, decorated.TotalMinor())
	require.Equal(t, "Espresso + Extra Shot + Hazelnut Syrup", decorated.Description())

	popular, err := d.OrderPopular(domain.CoffeeTypeCappuccino, menu.NewRequest())
	require.NoError(t, err)
	require.Equal(t, "Cappuccino + Whipped Cream + Caramel Drizzle", popular.Description())

	_, err = d.OrderSingle(domain.CoffeeType("mocha"), menu.NewRequest())
	require.ErrorIs(t, err, domain.ErrUnknownBeverage)

	_, err = d.OrderDecorated(domain.CoffeeTypeLatte, menu.NewRequest(), domain.FlavorSyrup(""))
	require.ErrorIs(t, err, domain.ErrFlavorRequired)

	combo, err := d.NewCombo("Morning Duo", 10)
	require.NoError(t, err)
	require.NoError(t, combo.Add(single))
	require.NoError(t, combo.Add(popular))
	require.ErrorIs(t, combo.Add(combo), domain.ErrComboCycle)
	require.Equal(t, 2, combo.ItemCount())

	_, err = d.NewCombo("Too Generous", 60)
	require.ErrorIs(t, err, domain.ErrDiscountOutOfRange)

	summary := d.Summary(combo)
	require.Contains(t, summary, "ORDER SUMMARY")
	require.Contains(t, summary, "Total Items: 2")
	require.Contains(t, summary, "Combo Discount: -10%")
}

func TestDesk_LifecycleWithUndoRedo(t *testing.T) {
	var sms bytes.Buffer
	d := newDesk(t, &sms)
	require.NoError(t, d.SetCustomer("Alice"))

	order, err := d.OrderSingle(domain.CoffeeTypeLatte, menu.NewRequest())
	require.NoError(t, err)

	id, err := d.Place(order)
	require.NoError(t, err)
	require.Equal(t, "1001", id)
	require.Equal(t, id, d.LastOrderID())

	require.NoError(t, d.UpdateStatus(id, domain.OrderStatusPreparing))
	status, err := d.Status(id)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPreparing, status)

	rec, err := d.Undo()
	require.NoError(t, err)
	require.Equal(t, command.KindUpdateStatus, rec.Kind)
	status, _ = d.Status(id)
	require.Equal(t, domain.OrderStatusPlaced, status)
	require.True(t, d.CanRedo())

	_, err = d.Redo()
	require.NoError(t, err)
	status, _ = d.Status(id)
	require.Equal(t, domain.OrderStatusPreparing, status)

	require.Len(t, d.History(), 2)
	require.Contains(t, sms.String(), "[SMS to Alice] Your order #1001 is now being prepared by our barista!")

	events, err := d.Timeline(id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, domain.TimelineOrderPreparing, events[2].Type)
}

func TestDesk_CancelUndoAndUnknownIDs(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})
	order, err := d.OrderPopular(domain.CoffeeTypeEspresso, menu.NewRequest())
	require.NoError(t, err)
	id, err := d.Place(order)
	require.NoError(t, err)

	d.Cancel(id)
	status, _ := d.Status(id)
	require.Equal(t, domain.OrderStatusCancelled, status)

	_, err = d.Undo()
	require.NoError(t, err)
	status, _ = d.Status(id)
	require.Equal(t, domain.OrderStatusPlaced, status)

	d.Cancel("9999")
	_, err = d.Status("9999")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Len(t, d.Orders(), 1)

	require.ErrorIs(t, d.UpdateStatus(id, domain.OrderStatus("brewing")), domain.ErrUnknownStatus)

	_, err = d.Place(nil)
	require.ErrorIs(t, err, domain.ErrOrderRequired)

	var typedNil *domain.SingleOrder
	_, err = d.Place(typedNil)
	require.ErrorIs(t, err, domain.ErrOrderRequired)
	require.Len(t, d.Orders(), 1)
}

// gatheredValue читает значение счётчика или гистограммы (число наблюдений) из реестра.
func gatheredValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestDesk_UndoCancelPublishesRestoredStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	d, err := New(Config{Metrics: metrics.NewDeskMetricsWithRegisterer(reg)})
	require.NoError(t, err)

	outbox := memory.NewOutboxRepository()
	require.NoError(t, d.Subscribe(kafka.NewEventRecorder(outbox)))

	order, err := d.OrderSingle(domain.CoffeeTypeLatte, menu.NewRequest())
	require.NoError(t, err)
	id, err := d.Place(order)
	require.NoError(t, err)
	require.NoError(t, d.UpdateStatus(id, domain.OrderStatusPreparing))
	d.Cancel(id)

	_, err = d.Undo()
	require.NoError(t, err)

	status, err := d.Status(id)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPreparing, status)

	pending := outbox.AllPending()
	require.Len(t, pending, 4)
	last := pending[len(pending)-1]
	require.Equal(t, string(kafka.EventTypeOrderRestored), last.EventType)
	var event kafka.OrderEvent
	require.NoError(t, json.Unmarshal(last.Payload, &event))
	require.Equal(t, string(status), event.Status)

	require.EqualValues(t, 1, gatheredValue(t, reg, "coffeeshop_orders_placed_total", nil))
	require.EqualValues(t, 1, gatheredValue(t, reg, "coffeeshop_order_total_dollars", nil))
	require.EqualValues(t, 2, gatheredValue(t, reg, "coffeeshop_status_transitions_total",
		map[string]string{"status": string(domain.OrderStatusPreparing)}))

	events, err := d.Timeline(id)
	require.NoError(t, err)
	require.Equal(t, domain.TimelineOrderPreparing, events[len(events)-1].Type)
}

func TestDesk_UndoPlacementRollsBackLastOrderID(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})
	order, err := d.OrderSingle(domain.CoffeeTypeEspresso, menu.NewRequest())
	require.NoError(t, err)

	first, err := d.Place(order)
	require.NoError(t, err)
	second, err := d.Place(order)
	require.NoError(t, err)
	require.Equal(t, second, d.LastOrderID())

	_, err = d.Undo()
	require.NoError(t, err)
	require.Equal(t, first, d.LastOrderID())

	_, err = d.Undo()
	require.NoError(t, err)
	require.Empty(t, d.LastOrderID())

	_, err = d.Redo()
	require.NoError(t, err)
	require.Equal(t, "1003", d.LastOrderID())
}

// Повтор размещения выдаёт новый номер, а повтор смены статуса по-прежнему
// адресован старому номеру и становится пустой операцией.
func TestDesk_RedoAfterReplacementKeepsOriginalTarget(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})
	order, err := d.OrderSingle(domain.CoffeeTypeLatte, menu.NewRequest())
	require.NoError(t, err)

	id, err := d.Place(order)
	require.NoError(t, err)
	require.Equal(t, "1001", id)
	require.NoError(t, d.UpdateStatus(id, domain.OrderStatusPreparing))

	for i := 0; i < 2; i++ {
		_, err = d.Undo()
		require.NoError(t, err)
	}
	require.Empty(t, d.Orders())

	for i := 0; i < 2; i++ {
		_, err = d.Redo()
		require.NoError(t, err)
	}

	orders := d.Orders()
	require.Len(t, orders, 1)
	require.Equal(t, "1002", orders[0].ID)
	require.Equal(t, domain.OrderStatusPlaced, orders[0].Entry.Status)
	_, err = d.Status("1001")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	history := d.History()
	require.Len(t, history, 2)
	require.Equal(t, command.KindUpdateStatus, history[1].Kind)
}

func TestDesk_RedoPlacementUpdatesLastOrderID(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})
	order, err := d.OrderSingle(domain.CoffeeTypeCappuccino, menu.NewRequest(menu.Takeaway()))
	require.NoError(t, err)
	require.Equal(t, domain.SizeLarge, order.Coffee.Size)

	_, err = d.Place(order)
	require.NoError(t, err)
	_, err = d.Undo()
	require.NoError(t, err)
	require.Empty(t, d.Orders())

	_, err = d.Redo()
	require.NoError(t, err)
	require.Equal(t, "1002", d.LastOrderID())

	_, err = d.Redo()
	require.ErrorIs(t, err, domain.ErrNothingToRedo)
}

func TestDesk_PayOrder(t *testing.T) {
	d := newDesk(t, &bytes.Buffer{})
	order, err := d.OrderSingle(domain.CoffeeTypeLatte, menu.NewRequest())
	require.NoError(t, err)
	id, err := d.Place(order)
	require.NoError(t, err)

	_, err = d.PayOrder(id)
	require.ErrorIs(t, err, domain.ErrNoPaymentMethod)
	require.Equal(t, payment.NoMethod, d.PaymentMethod())

	d.SetPayment(payment.NewCash(100))
	_, err = d.PayOrder(id)
	require.ErrorIs(t, err, domain.ErrInsufficientCash)
	status, _ := d.Status(id)
	require.Equal(t, domain.OrderStatusPlaced, status, "declined payment must not change the order")

	d.SetPayment(payment.NewLoyaltyPoints("cust-1", 1000))
	receipt, err := d.PayOrder(id)
	require.NoError(t, err)
	require.Equal(t, 350, receipt.PointsUsed)
	status, _ = d.Status(id)
	require.Equal(t, domain.OrderStatusPreparing, status)

	_, err = d.PayOrder(id)
	require.ErrorIs(t, err, domain.ErrOrderNotPayable)

	_, err = d.PayOrder("4242")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	// Оплата попадает в историю и отменяется как обычная смена статуса.
	_, err = d.Undo()
	require.NoError(t, err)
	status, _ = d.Status(id)
	require.Equal(t, domain.OrderStatusPlaced, status)

	mock := payment.NewMockStrategy()
	d.SetPayment(mock)
	_, err = d.ProcessPayment(250)
	require.NoError(t, err)
	require.Equal(t, []int64{250}, mock.Amounts)
}

func TestDesk_Subscriptions(t *testing.T) {
	var out bytes.Buffer
	var failures []string
	d, err := New(Config{
		Out: &out,
		OnListenerFailure: func(listener, event string, err error) {
			failures = append(failures, listener)
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{notify.TimelineRecorderName}, d.Listeners())

	require.NoError(t, d.Subscribe(notify.NewKitchenDisplay(failingWriter{})))
	loyalty := notify.NewLoyaltyAccrual(&out)
	require.NoError(t, d.Subscribe(loyalty))
	require.ErrorIs(t, d.Subscribe(notify.NewLoyaltyAccrual(&out)), domain.ErrListenerExists)

	require.NoError(t, d.SetCustomer("Bob"))
	require.NoError(t, d.SetCustomer("Carol"))
	require.Equal(t, "Carol", d.Customer())

	order, err := d.OrderSingle(domain.CoffeeTypeEspresso, menu.NewRequest())
	require.NoError(t, err)
	id, err := d.Place(order)
	require.NoError(t, err)
	require.NoError(t, d.UpdateStatus(id, domain.OrderStatusReady))

	require.Equal(t, []string{notify.KitchenDisplayName, notify.KitchenDisplayName}, failures)
	require.Equal(t, notify.ReadyBonusPoints, loyalty.Points())
	require.NotContains(t, out.String(), "[SMS to Bob]")
	require.Contains(t, out.String(), "[SMS to Carol] Your order #1001 is ready for pickup!")

	require.True(t, d.Unsubscribe(notify.KitchenDisplayName))
	require.NoError(t, d.SetCustomer(""))
	require.Equal(t, []string{notify.TimelineRecorderName, notify.LoyaltyAccrualName}, d.Listeners())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("display offline") }
