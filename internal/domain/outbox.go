package domain

import "time"

// OutboxMessage — событие заказа, ожидающее публикации во внешний брокер.
type OutboxMessage struct {
	ID        string
	OrderID   string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxStats описывает текущий backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из outbox; должен быть идемпотентным.
type OutboxPublisher interface {
	Publish(msg OutboxMessage) error
}
