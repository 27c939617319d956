package app

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/coffeeshop/internal/health"
	"github.com/vladislavdragonenkov/coffeeshop/internal/menu"
	"github.com/vladislavdragonenkov/coffeeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/coffeeshop/internal/metrics"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/desk"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/notify"
	"github.com/vladislavdragonenkov/coffeeshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/coffeeshop/internal/version"
)

// Dependencies содержит собранные компоненты стойки.
type Dependencies struct {
	Desk         *desk.Desk
	Metrics      *metrics.DeskMetrics
	Loyalty      *notify.LoyaltyAccrual
	Outbox       *memory.OutboxRepository
	OutboxWorker *outbox.Worker
	Health       *healthcheck.Handler
	Logger       *log.Entry

	producer *kafka.Producer
	timeline timelineStorage
}

// NewDependencies собирает стойку: меню, журнал, слушатели, outbox и проверки здоровья.
// Вывод кухни, SMS и лояльности идёт в out.
func NewDependencies(ctx context.Context, cfg Config, out io.Writer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if out == nil {
		out = io.Discard
	}

	registry := menu.DefaultRegistry()
	if cfg.MenuFile != "" {
		loaded, err := menu.LoadRegistry(cfg.MenuFile)
		if err != nil {
			return nil, fmt.Errorf("load menu: %w", err)
		}
		registry = loaded
		logger.WithField("menu_file", cfg.MenuFile).Info("menu loaded")
	}

	timeline, err := initTimelineStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	deskMetrics := metrics.NewDeskMetrics()
	d, err := desk.New(desk.Config{
		Barista:  menu.NewBarista(registry),
		Timeline: timeline.repo,
		Metrics:  deskMetrics,
		Out:      out,
		Logger:   logger.WithField("component", "desk"),
	})
	if err != nil {
		timeline.close(logger)
		return nil, err
	}

	outboxRepo := memory.NewOutboxRepository()
	loyalty := notify.NewLoyaltyAccrual(out)
	for _, listener := range []domain.Listener{
		notify.NewKitchenDisplay(out),
		loyalty,
		kafka.NewEventRecorder(outboxRepo),
	} {
		if err := d.Subscribe(listener); err != nil {
			timeline.close(logger)
			return nil, fmt.Errorf("subscribe %s: %w", listener.Name(), err)
		}
	}
	if err := d.SetCustomer(cfg.CustomerName); err != nil {
		timeline.close(logger)
		return nil, fmt.Errorf("subscribe customer: %w", err)
	}

	// Недоступная Kafka не мешает работе стойки.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	worker := outbox.NewWorker(outboxRepo, outboxPublisher(producer, cfg.KafkaTopic, logger),
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithMetrics(deskMetrics),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)

	deps := &Dependencies{
		Desk:         d,
		Metrics:      deskMetrics,
		Loyalty:      loyalty,
		Outbox:       outboxRepo,
		OutboxWorker: worker,
		Health:       healthcheck.NewHandler(version.GetVersion()),
		Logger:       logger,
		producer:     producer,
		timeline:     timeline,
	}
	deps.registerHealthChecks(cfg)
	return deps, nil
}

func (d *Dependencies) registerHealthChecks(cfg Config) {
	d.Health.Register("outbox", healthcheck.Threshold(func() int {
		stats, err := d.Outbox.Stats()
		if err != nil {
			return 0
		}
		return stats.PendingCount
	}, cfg.OutboxMaxPending, "pending order events"))

	d.Health.Register("desk", healthcheck.CheckerFunc(func(context.Context) healthcheck.Check {
		return healthcheck.Check{
			Status:  healthcheck.StatusHealthy,
			Message: fmt.Sprintf("%d orders, %d listeners", len(d.Desk.Orders()), len(d.Desk.Listeners())),
		}
	}))

	if d.timeline.store != nil {
		d.Health.Register("postgres", healthcheck.Ping(d.timeline.store.Ping))
	}
}

// Close освобождает внешние ресурсы. Worker к этому моменту должен быть остановлен.
func (d *Dependencies) Close() {
	closeKafka(d.producer, d.Logger)
	d.timeline.close(d.Logger)
}

// SessionID возвращает идентификатор сессии журнала PostgreSQL или пустую строку.
func (d *Dependencies) SessionID() string { return d.timeline.sessionID }
