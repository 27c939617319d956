package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/app"
	"github.com/vladislavdragonenkov/coffeeshop/internal/version"
)

const (
	envMetricsAddr         = "COFFEESHOP_METRICS_ADDR"
	envGRPCAddr            = "COFFEESHOP_GRPC_ADDR"
	envMenuFile            = "COFFEESHOP_MENU_FILE"
	envCustomer            = "COFFEESHOP_CUSTOMER"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envKafkaTopic          = "COFFEESHOP_KAFKA_TOPIC"
	envStorageDriver       = "COFFEESHOP_STORAGE_DRIVER"
	envPostgresDSN         = "COFFEESHOP_POSTGRES_DSN"
	envPostgresAutoMigrate = "COFFEESHOP_POSTGRES_AUTO_MIGRATE"
	envOutboxPollInterval  = "COFFEESHOP_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize     = "COFFEESHOP_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts   = "COFFEESHOP_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay    = "COFFEESHOP_OUTBOX_RETRY_DELAY"
	envOutboxMaxPending    = "COFFEESHOP_OUTBOX_MAX_PENDING"
	envLogLevel            = "COFFEESHOP_LOG_LEVEL"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if raw, ok := lookup(envLogLevel); ok {
		if level, err := log.ParseLevel(strings.TrimSpace(raw)); err == nil {
			log.SetLevel(level)
		}
	}
}

// readConfigFromEnv накладывает переменные окружения на конфигурацию по умолчанию.
// Некорректные значения пропускаются с предупреждением.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: %v", key, raw, err))
	}

	textual := map[string]*string{
		envMetricsAddr:   &cfg.MetricsAddr,
		envGRPCAddr:      &cfg.GRPCAddr,
		envMenuFile:      &cfg.MenuFile,
		envCustomer:      &cfg.CustomerName,
		envKafkaBrokers:  &cfg.KafkaBrokers,
		envKafkaTopic:    &cfg.KafkaTopic,
		envStorageDriver: &cfg.StorageDriver,
		envPostgresDSN:   &cfg.PostgresDSN,
	}
	for key, target := range textual {
		if raw, ok := lookup(key); ok {
			*target = trim(raw)
		}
	}
	cfg.StorageDriver = lower(cfg.StorageDriver)

	if raw, ok := lookup(envPostgresAutoMigrate); ok {
		if v, err := parseBool(raw); err != nil {
			warn(envPostgresAutoMigrate, raw, err)
		} else {
			cfg.PostgresAutoMigrate = v
		}
	}

	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	for key, field := range map[string]struct {
		target *int
		valid  func(int) bool
		rule   string
	}{
		envOutboxBatchSize:   {&cfg.OutboxBatchSize, positive, "must be > 0"},
		envOutboxMaxAttempts: {&cfg.OutboxMaxAttempts, positive, "must be > 0"},
		envOutboxMaxPending:  {&cfg.OutboxMaxPending, nonNegative, "must be >= 0"},
	} {
		if raw, ok := lookup(key); ok {
			if v, err := parseInt(raw, field.valid, field.rule); err != nil {
				warn(key, raw, err)
			} else {
				*field.target = v
			}
		}
	}

	for key, field := range map[string]struct {
		target *time.Duration
		valid  func(time.Duration) bool
		rule   string
	}{
		envOutboxPollInterval: {&cfg.OutboxPollInterval, func(v time.Duration) bool { return v > 0 }, "must be > 0"},
		envOutboxRetryDelay:   {&cfg.OutboxRetryDelay, func(v time.Duration) bool { return v >= 0 }, "must be >= 0"},
	} {
		if raw, ok := lookup(key); ok {
			if v, err := parseDuration(raw, field.valid, field.rule); err != nil {
				warn(key, raw, err)
			} else {
				*field.target = v
			}
		}
	}

	return cfg, warnings
}

func trim(raw string) string  { return strings.TrimSpace(raw) }
func lower(raw string) string { return strings.ToLower(strings.TrimSpace(raw)) }

func parseBool(raw string) (bool, error) {
	switch lower(raw) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, errors.New("not a boolean")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(trim(raw))
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(trim(raw))
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, errors.New(rule)
	}
	return v, nil
}

func main() {
	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":        version.String(),
		"metrics_addr":   cfg.MetricsAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka_enabled":  cfg.KafkaBrokers != "",
	}).Info("starting coffeeshop order desk")

	if err := app.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("order desk stopped with error")
	}

	log.Info("coffeeshop order desk stopped")
}
