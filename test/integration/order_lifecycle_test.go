package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/menu"
	"github.com/vladislavdragonenkov/coffeeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/coffeeshop/internal/metrics"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/desk"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/notify"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/payment"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
)

// capturePublisher собирает события, которые worker перенёс из outbox.
type capturePublisher struct {
	mu     sync.Mutex
	events []kafka.OrderEvent
}

func (p *capturePublisher) Publish(msg domain.OutboxMessage) error {
	var event kafka.OrderEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []kafka.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]kafka.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType)
	}
	return types
}

// OrderLifecycleTestSuite проверяет стойку вместе со слушателями и outbox.
type OrderLifecycleTestSuite struct {
	suite.Suite

	out       *bytes.Buffer
	desk      *desk.Desk
	loyalty   *notify.LoyaltyAccrual
	outbox    *memory.OutboxRepository
	worker    *outbox.Worker
	publisher *capturePublisher
}

func (s *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	logger := baseLogger.WithField("component", "integration-test")

	s.out = &bytes.Buffer{}
	deskMetrics := metrics.NewDeskMetricsWithRegisterer(prometheus.NewRegistry())

	d, err := desk.New(desk.Config{Metrics: deskMetrics, Out: s.out, Logger: logger})
	s.Require().NoError(err)
	s.desk = d

	s.outbox = memory.NewOutboxRepository()
	s.loyalty = notify.NewLoyaltyAccrual(s.out)
	s.Require().NoError(d.Subscribe(notify.NewKitchenDisplay(s.out)))
	s.Require().NoError(d.Subscribe(s.loyalty))
	s.Require().NoError(d.Subscribe(kafka.NewEventRecorder(s.outbox)))
	s.Require().NoError(d.SetCustomer("Alice"))

	s.publisher = &capturePublisher{}
	s.worker = outbox.NewWorker(s.outbox, s.publisher,
		outbox.WithLogger(logger),
		outbox.WithMetrics(deskMetrics),
		outbox.WithRetryBaseDelay(0),
	)
}

func (s *OrderLifecycleTestSuite) place(typ domain.CoffeeType, modifiers ...domain.Modifier) string {
	order, err := s.desk.OrderDecorated(typ, menu.NewRequest(), modifiers...)
	s.Require().NoError(err)
	id, err := s.desk.Place(order)
	s.Require().NoError(err)
	return id
}

func (s *OrderLifecycleTestSuite) status(id string) domain.OrderStatus {
	status, err := s.desk.Status(id)
	s.Require().NoError(err)
	return status
}

func (s *OrderLifecycleTestSuite) TestFullLifecycleReachesBroker() {
	id := s.place(domain.CoffeeTypeLatte, domain.FlavorSyrup("Vanilla"))
	s.Equal("1001", id)

	s.desk.SetPayment(payment.NewCash(500))
	receipt, err := s.desk.PayOrder(id)
	s.Require().NoError(err)
	s.EqualValues(90, receipt.ChangeMinor)
	s.Equal(domain.OrderStatusPreparing, s.status(id))

	s.Require().NoError(s.desk.UpdateStatus(id, domain.OrderStatusReady))
	s.Require().NoError(s.desk.UpdateStatus(id, domain.OrderStatusCompleted))
	s.Equal(50, s.loyalty.Points())

	s.Equal(3, s.worker.ProcessOnce(context.Background()))
	s.Equal([]kafka.EventType{
		kafka.EventTypeOrderPlaced,
		kafka.EventTypeOrderPreparing,
		kafka.EventTypeOrderReady,
	}, s.publisher.types())

	events, err := s.desk.Timeline(id)
	s.Require().NoError(err)
	s.Len(events, 3)

	s.Contains(s.out.String(), "[SMS to Alice] Your order #1001 is ready for pickup! Enjoy your coffee!")
}

func (s *OrderLifecycleTestSuite) TestUndoRedoScenario() {
	id := s.place(domain.CoffeeTypeCappuccino)
	s.Require().NoError(s.desk.UpdateStatus(id, domain.OrderStatusPreparing))

	_, err := s.desk.Undo()
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPlaced, s.status(id))

	_, err = s.desk.Redo()
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPreparing, s.status(id))

	second := s.place(domain.CoffeeTypeEspresso)
	s.desk.Cancel(second)
	s.Equal(domain.OrderStatusCancelled, s.status(second))
	_, err = s.desk.Undo()
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPlaced, s.status(second))
	s.True(s.desk.CanRedo(), "undone cancel stays redoable")
}

func (s *OrderLifecycleTestSuite) TestUndoneCancelReachesBrokerWithRestoredStatus() {
	id := s.place(domain.CoffeeTypeLatte)
	s.Require().NoError(s.desk.UpdateStatus(id, domain.OrderStatusPreparing))
	s.desk.Cancel(id)

	_, err := s.desk.Undo()
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPreparing, s.status(id))

	s.Equal(4, s.worker.ProcessOnce(context.Background()))
	s.Equal([]kafka.EventType{
		kafka.EventTypeOrderPlaced,
		kafka.EventTypeOrderPreparing,
		kafka.EventTypeOrderCancelled,
		kafka.EventTypeOrderRestored,
	}, s.publisher.types())
}

func (s *OrderLifecycleTestSuite) TestDeclinedPaymentKeepsOrderPlaced() {
	id := s.place(domain.CoffeeTypeEspresso)

	mock := payment.NewMockStrategy()
	mock.Err = domain.ErrCardInvalid
	s.desk.SetPayment(mock)

	_, err := s.desk.PayOrder(id)
	s.Require().ErrorIs(err, domain.ErrCardInvalid)
	s.True(domain.IsPaymentDeclined(err))
	s.Equal(domain.OrderStatusPlaced, s.status(id))
	s.Equal([]int64{200}, mock.Amounts)

	mock.Err = nil
	_, err = s.desk.PayOrder(id)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPreparing, s.status(id))
}

func (s *OrderLifecycleTestSuite) TestFailingListenerDoesNotBlockOthers() {
	s.Require().NoError(s.desk.Subscribe(panickingListener{}))

	id := s.place(domain.CoffeeTypeEspresso)
	s.Equal(domain.OrderStatusPlaced, s.status(id))
	s.Contains(s.out.String(), "[KITCHEN DISPLAY] NEW ORDER #"+id)

	s.True(s.desk.Unsubscribe("panicking"))
	s.NotContains(s.desk.Listeners(), "panicking")
}

type panickingListener struct{}

func (panickingListener) Name() string { return "panicking" }

func (panickingListener) OnPlaced(string, domain.OrderComponent) error { panic("display offline") }

func TestOrderLifecycleSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
