package outbox

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultBatchSize      = 50
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond

	maxDrainRounds = 10
)

// Результаты публикации для метрик.
const (
	ResultSent       = "sent"
	ResultRetryError = "retry_error"
	ResultFailed     = "failed"
)

// Metrics принимает сведения о публикации и backlog.
type Metrics interface {
	RecordOutboxPublish(result string)
	SetOutboxBacklog(pending int, oldestAge time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) RecordOutboxPublish(string)          {}
func (nopMetrics) SetOutboxBacklog(int, time.Duration) {}

type workerOptions struct {
	logger         *log.Entry
	metrics        Metrics
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*workerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *workerOptions) { opts.logger = logger }
}

// WithMetrics задаёт приёмник метрик.
func WithMetrics(metrics Metrics) Option {
	return func(opts *workerOptions) { opts.metrics = metrics }
}

// WithPollInterval задаёт частоту опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(opts *workerOptions) { opts.pollInterval = interval }
}

// WithBatchSize задаёт размер батча.
func WithBatchSize(batchSize int) Option {
	return func(opts *workerOptions) { opts.batchSize = batchSize }
}

// WithMaxAttempts задаёт число попыток публикации перед пометкой failed.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *workerOptions) { opts.maxAttempts = maxAttempts }
}

// WithRetryBaseDelay задаёт базовую задержку exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *workerOptions) { opts.retryBaseDelay = delay }
}

// Worker переносит события заказов из outbox в брокер.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	opts      workerOptions
}

// NewWorker создаёт outbox worker.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	opts := workerOptions{
		pollInterval:   defaultPollInterval,
		batchSize:      defaultBatchSize,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	if opts.logger == nil {
		opts.logger = log.WithField("component", "outbox-worker")
	}
	if opts.metrics == nil {
		opts.metrics = nopMetrics{}
	}
	if opts.pollInterval <= 0 {
		opts.pollInterval = defaultPollInterval
	}
	if opts.batchSize <= 0 {
		opts.batchSize = defaultBatchSize
	}
	if opts.maxAttempts <= 0 {
		opts.maxAttempts = defaultMaxAttempts
	}
	if opts.retryBaseDelay < 0 {
		opts.retryBaseDelay = 0
	}

	return &Worker{repo: repo, publisher: publisher, opts: opts}
}

// Run опрашивает outbox до отмены ctx и делает финальный проход перед выходом.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.opts.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	ticker := time.NewTicker(w.opts.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Досылаем накопленное при остановке.
			w.drain()
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл опроса и возвращает число опубликованных сообщений.
func (w *Worker) ProcessOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	defer w.refreshBacklog()

	events, err := w.repo.PullPending(w.opts.batchSize)
	if err != nil {
		w.opts.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return 0
	}

	sent := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return sent
		}
		if w.handle(ctx, event) {
			sent++
		}
	}
	return sent
}

func (w *Worker) drain() {
	for i := 0; i < maxDrainRounds; i++ {
		if w.ProcessOnce(context.Background()) < w.opts.batchSize {
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, event domain.OutboxMessage) bool {
	logger := w.opts.logger.WithFields(log.Fields{
		"outbox_id":  event.ID,
		"order_id":   event.OrderID,
		"event_type": event.EventType,
	})

	if err := w.publishWithRetry(ctx, event); err != nil {
		logger.WithError(err).Error("outbox publish failed after retries")
		w.opts.metrics.RecordOutboxPublish(ResultFailed)
		if markErr := w.repo.MarkFailed(event.ID); markErr != nil {
			logger.WithError(markErr).Warn("failed to mark outbox message as failed")
		}
		return false
	}

	if err := w.repo.MarkSent(event.ID); err != nil {
		logger.WithError(err).Warn("failed to mark outbox message as sent")
	}
	return true
}

func (w *Worker) publishWithRetry(ctx context.Context, event domain.OutboxMessage) error {
	var lastErr error

	for attempt := 1; attempt <= w.opts.maxAttempts; attempt++ {
		err := w.publisher.Publish(event)
		if err == nil {
			w.opts.metrics.RecordOutboxPublish(ResultSent)
			return nil
		}
		lastErr = err
		w.opts.metrics.RecordOutboxPublish(ResultRetryError)

		if attempt == w.opts.maxAttempts {
			break
		}
		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.opts.maxAttempts, lastErr)
}

func (w *Worker) refreshBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.opts.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}
	var age time.Duration
	if stats.PendingCount > 0 && !stats.OldestPendingAt.IsZero() {
		age = time.Since(stats.OldestPendingAt)
	}
	w.opts.metrics.SetOutboxBacklog(stats.PendingCount, age)
}

// retryBackoff удваивает базовую задержку на каждую попытку, не переполняя Duration.
func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.opts.retryBaseDelay <= 0 {
		return 0
	}
	const maxDuration = time.Duration(1<<63 - 1)
	delay := w.opts.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}
