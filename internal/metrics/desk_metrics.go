package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

// DeskMetrics содержит метрики стойки заказов.
type DeskMetrics struct {
	// Жизненный цикл заказов
	ordersPlaced      prometheus.Counter
	ordersCancelled   prometheus.Counter
	statusTransitions *prometheus.CounterVec
	openOrders        prometheus.Gauge
	orderTotal        prometheus.Histogram

	// История команд
	commands *prometheus.CounterVec

	// Слушатели и оплата
	listenerFailures *prometheus.CounterVec
	payments         *prometheus.CounterVec

	// Outbox
	outboxPublish   *prometheus.CounterVec
	outboxPending   prometheus.Gauge
	outboxOldestAge prometheus.Gauge
}

// NewDeskMetrics регистрирует метрики в DefaultRegisterer.
func NewDeskMetrics() *DeskMetrics {
	return NewDeskMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewDeskMetricsWithRegisterer регистрирует метрики в указанном registerer.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewDeskMetricsWithRegisterer(registerer prometheus.Registerer) *DeskMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &DeskMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_orders_placed_total",
			Help: "Total number of placed (or restored) orders",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_orders_cancelled_total",
			Help: "Total number of cancelled or withdrawn orders",
		}),
		statusTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_status_transitions_total",
			Help: "Order status notifications grouped by status",
		}, []string{"status"}),
		openOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "coffeeshop_open_orders",
			Help: "Number of orders that are placed or preparing",
		}),
		orderTotal: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "coffeeshop_order_total_dollars",
			Help:    "Totals of placed orders in dollars",
			Buckets: []float64{1, 2, 3, 4, 5, 7.5, 10, 15, 25},
		}),
		commands: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_commands_total",
			Help: "Command history operations grouped by command kind and action",
		}, []string{"kind", "action"}),
		listenerFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_listener_failures_total",
			Help: "Listener failures grouped by listener name",
		}, []string{"listener"}),
		payments: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_payments_total",
			Help: "Payment attempts grouped by method and result",
		}, []string{"method", "result"}),
		outboxPublish: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "coffeeshop_outbox_publish_attempts_total",
			Help: "Total number of outbox publish attempts grouped by result",
		}, []string{"result"}),
		outboxPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "coffeeshop_outbox_pending_records",
			Help: "Current number of pending order events in the outbox",
		}),
		outboxOldestAge: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "coffeeshop_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced учитывает размещённый заказ и его сумму.
func (m *DeskMetrics) RecordOrderPlaced(totalMinor int64) {
	m.ordersPlaced.Inc()
	m.statusTransitions.WithLabelValues(string(domain.OrderStatusPlaced)).Inc()
	m.orderTotal.Observe(float64(totalMinor) / 100)
}

// RecordOrderCancelled учитывает отмену заказа.
func (m *DeskMetrics) RecordOrderCancelled() {
	m.ordersCancelled.Inc()
	m.statusTransitions.WithLabelValues(string(domain.OrderStatusCancelled)).Inc()
}

// RecordStatus учитывает уведомление о смене статуса.
func (m *DeskMetrics) RecordStatus(status domain.OrderStatus) {
	m.statusTransitions.WithLabelValues(string(status)).Inc()
}

// SetOpenOrders выставляет число открытых заказов.
func (m *DeskMetrics) SetOpenOrders(count int) {
	m.openOrders.Set(float64(count))
}

// RecordCommand учитывает execute/undo/redo команды.
func (m *DeskMetrics) RecordCommand(kind, action string) {
	m.commands.WithLabelValues(kind, action).Inc()
}

// RecordListenerFailure учитывает сбой слушателя.
func (m *DeskMetrics) RecordListenerFailure(listener string) {
	m.listenerFailures.WithLabelValues(listener).Inc()
}

// RecordPayment учитывает попытку оплаты.
func (m *DeskMetrics) RecordPayment(method, result string) {
	m.payments.WithLabelValues(method, result).Inc()
}

// RecordOutboxPublish учитывает попытку публикации из outbox.
func (m *DeskMetrics) RecordOutboxPublish(result string) {
	m.outboxPublish.WithLabelValues(result).Inc()
}

// SetOutboxBacklog выставляет размер backlog и возраст самого старого сообщения.
func (m *DeskMetrics) SetOutboxBacklog(pending int, oldestAge time.Duration) {
	m.outboxPending.Set(float64(pending))
	if oldestAge < 0 {
		oldestAge = 0
	}
	m.outboxOldestAge.Set(oldestAge.Seconds())
}
