package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/domain"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/coffeeshop/internal/storage/postgres"
)

var errPostgresDSNRequired = errors.New("postgres DSN is required for postgres storage driver")

// timelineStorage — выбранный журнал заказов и, для PostgreSQL, его пул.
type timelineStorage struct {
	repo      domain.TimelineRepository
	store     *postgres.Store
	sessionID string
}

// initTimelineStorage открывает журнал по cfg.StorageDriver.
// Идентификаторы заказов начинаются заново в каждом процессе, поэтому
// записи PostgreSQL разделяются идентификатором сессии.
func initTimelineStorage(ctx context.Context, cfg Config, logger *log.Entry) (timelineStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case "", StorageDriverMemory:
		return timelineStorage{repo: memory.NewTimelineRepository()}, nil
	case StorageDriverPostgres:
	default:
		return timelineStorage{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	dsn := strings.TrimSpace(cfg.PostgresDSN)
	if dsn == "" {
		return timelineStorage{}, errPostgresDSNRequired
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return timelineStorage{}, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return timelineStorage{}, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	sessionID := uuid.NewString()
	logger.WithField("session_id", sessionID).Info("order timeline stored in postgres")
	return timelineStorage{
		repo:      postgres.NewTimelineRepository(store, sessionID),
		store:     store,
		sessionID: sessionID,
	}, nil
}

func (s timelineStorage) close(logger *log.Entry) {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
