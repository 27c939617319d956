package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// Имена встроенных слушателей.
const (
	KitchenDisplayName    = "kitchen-display"
	CustomerMessengerName = "customer-messenger"
	LoyaltyAccrualName    = "loyalty"
	TimelineRecorderName  = "timeline"
)

// Константы программы лояльности.
const (
	PointsPerDollar  = 10
	ReadyBonusPoints = 50
)

// KitchenDisplay выводит заказы на экран бариста.
type KitchenDisplay struct {
	out io.Writer
}

func NewKitchenDisplay(out io.Writer) *KitchenDisplay {
	return &KitchenDisplay{out: out}
}

func (k *KitchenDisplay) Name() string { return KitchenDisplayName }

func (k *KitchenDisplay) OnPlaced(orderID string, order domain.OrderComponent) error {
	_, err := fmt.Fprintf(k.out,
		"[KITCHEN DISPLAY] NEW ORDER #%s\n[KITCHEN DISPLAY] Items: %s\n[KITCHEN DISPLAY] -----------------------\n",
		orderID, order.Description())
	return err
}

func (k *KitchenDisplay) OnPreparing(orderID string) error {
	_, err := fmt.Fprintf(k.out, "[KITCHEN DISPLAY] Order #%s -> IN PROGRESS\n", orderID)
	return err
}

func (k *KitchenDisplay) OnReady(orderID string) error {
	_, err := fmt.Fprintf(k.out, "[KITCHEN DISPLAY] Order #%s -> COMPLETED\n", orderID)
	return err
}

func (k *KitchenDisplay) OnCancelled(orderID string) error {
	_, err := fmt.Fprintf(k.out, "[KITCHEN DISPLAY] Order #%s -> CANCELLED\n", orderID)
	return err
}

// CustomerMessenger отправляет клиенту SMS о ходе заказа.
type CustomerMessenger struct {
	customer string
	out      io.Writer
}

func NewCustomerMessenger(customer string, out io.Writer) *CustomerMessenger {
	return &CustomerMessenger{customer: customer, out: out}
}

func (c *CustomerMessenger) Name() string { return CustomerMessengerName }

// Customer возвращает имя клиента.
func (c *CustomerMessenger) Customer() string { return c.customer }

func (c *CustomerMessenger) OnPlaced(orderID string, order domain.OrderComponent) error {
	return c.send("Your order #%s has been placed! Total: %s", orderID, domain.FormatMinor(order.TotalMinor()))
}

func (c *CustomerMessenger) OnPreparing(orderID string) error {
	return c.send("Your order #%s is now being prepared by our barista!", orderID)
}

func (c *CustomerMessenger) OnReady(orderID string) error {
	return c.send("Your order #%s is ready for pickup! Enjoy your coffee!", orderID)
}

func (c *CustomerMessenger) OnCancelled(orderID string) error {
	return c.send("Your order #%s has been cancelled. Refund will be processed shortly.", orderID)
}

func (c *CustomerMessenger) send(format string, args ...any) error {
	_, err := fmt.Fprintf(c.out, "[SMS to %s] %s\n", c.customer, fmt.Sprintf(format, args...))
	return err
}

// LoyaltyAccrual начисляет баллы за выданные заказы.
// При размещении только сообщает о будущих баллах, начисление происходит при готовности.
type LoyaltyAccrual struct {
	out io.Writer

	mu     sync.Mutex
	points int
}

func NewLoyaltyAccrual(out io.Writer) *LoyaltyAccrual {
	return &LoyaltyAccrual{out: out}
}

func (l *LoyaltyAccrual) Name() string { return LoyaltyAccrualName }

// Points возвращает накопленные баллы.
func (l *LoyaltyAccrual) Points() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.points
}

// PotentialPoints считает баллы за заказ: PointsPerDollar за каждый полный доллар.
func PotentialPoints(totalMinor int64) int {
	if totalMinor <= 0 {
		return 0
	}
	return int(totalMinor * PointsPerDollar / 100)
}

func (l *LoyaltyAccrual) OnPlaced(orderID string, order domain.OrderComponent) error {
	_, err := fmt.Fprintf(l.out, "[LOYALTY] You will earn %d points for order #%s\n",
		PotentialPoints(order.TotalMinor()), orderID)
	return err
}

func (l *LoyaltyAccrual) OnReady(string) error {
	l.mu.Lock()
	l.points += ReadyBonusPoints
	total := l.points
	l.mu.Unlock()

	_, err := fmt.Fprintf(l.out, "[LOYALTY] You earned %d points! Total: %d points\n", ReadyBonusPoints, total)
	return err
}

func (l *LoyaltyAccrual) OnCancelled(orderID string) error {
	_, err := fmt.Fprintf(l.out, "[LOYALTY] No points awarded for cancelled order #%s\n", orderID)
	return err
}

// TimelineRecorder пишет события в журнал заказа.
type TimelineRecorder struct {
	repo domain.TimelineRepository
	now  func() time.Time
}

func NewTimelineRecorder(repo domain.TimelineRepository) *TimelineRecorder {
	return &TimelineRecorder{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (t *TimelineRecorder) Name() string { return TimelineRecorderName }

func (t *TimelineRecorder) OnPlaced(orderID string, order domain.OrderComponent) error {
	return t.append(orderID, domain.TimelineOrderPlaced, order.Description())
}

func (t *TimelineRecorder) OnPreparing(orderID string) error {
	return t.append(orderID, domain.TimelineOrderPreparing, "")
}

func (t *TimelineRecorder) OnReady(orderID string) error {
	return t.append(orderID, domain.TimelineOrderReady, "")
}

func (t *TimelineRecorder) OnCancelled(orderID string) error {
	return t.append(orderID, domain.TimelineOrderCancelled, "")
}

func (t *TimelineRecorder) append(orderID, eventType, reason string) error {
	return t.repo.Append(domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: t.now(),
	})
}

var (
	_ domain.PlacedHandler    = (*KitchenDisplay)(nil)
	_ domain.CancelledHandler = (*KitchenDisplay)(nil)
	_ domain.ReadyHandler     = (*CustomerMessenger)(nil)
	_ domain.PlacedHandler    = (*LoyaltyAccrual)(nil)
	_ domain.ReadyHandler     = (*LoyaltyAccrual)(nil)
	_ domain.PreparingHandler = (*TimelineRecorder)(nil)
)
