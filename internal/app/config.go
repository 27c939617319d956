package app

import "time"

// Драйверы журнала заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска стойки.
type Config struct {
	// MetricsAddr — адрес HTTP (/metrics, /healthz, /orders); пустой отключает сервер.
	MetricsAddr string
	// GRPCAddr — адрес gRPC health; пустой отключает gRPC.
	GRPCAddr string

	// MenuFile — YAML с рецептами; пустой означает стандартное меню.
	MenuFile string
	// CustomerName подписывает SMS клиенту при старте.
	CustomerName string

	// KafkaBrokers — список брокеров через запятую; пустой включает публикацию в лог.
	KafkaBrokers string
	KafkaTopic   string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPending — порог, после которого /healthz сообщает degraded.
	OutboxMaxPending int
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		GRPCAddr:            "",
		KafkaTopic:          "coffeeshop.order.events",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    200 * time.Millisecond,
		OutboxMaxPending:    1000,
	}
}
