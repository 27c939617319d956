package app

import (
	"context"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/coffeeshop/internal/console"
	"github.com/vladislavdragonenkov/coffeeshop/internal/version"
)

// Run собирает стойку, поднимает служебные серверы и ведёт консольную сессию.
// Возвращается после quit, конца ввода или отмены ctx; outbox дочищается перед выходом.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, out, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		deps.OutboxWorker.Run(runCtx)
	}()

	if cfg.MetricsAddr != "" {
		srv := startOpsServer(runCtx, cfg.MetricsAddr, newOpsRouter(deps.Desk, deps.Health), logger)
		defer shutdownHTTP(srv, logger)
	}

	if cfg.GRPCAddr != "" {
		grpcSrv := newGRPCServer(logger.WithField("layer", "grpc"))
		if _, err := grpcSrv.serve(cfg.GRPCAddr); err != nil {
			cancel()
			wg.Wait()
			return err
		}
		defer grpcSrv.stop()
	}

	logger.WithFields(log.Fields{
		"version":    version.GetVersion(),
		"session_id": deps.SessionID(),
	}).Info("order desk ready")
	_, _ = io.WriteString(out, "Welcome to the coffee shop! Type help for commands.\n")

	// Scanner блокируется на чтении, поэтому консоль живёт в своей горутине.
	consoleDone := make(chan error, 1)
	go func() {
		consoleDone <- console.New(deps.Desk, out, logger.WithField("component", "console")).Run(runCtx, in)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping order desk")
		runErr = ctx.Err()
	case runErr = <-consoleDone:
	}

	cancel()
	wg.Wait()
	logger.WithField("loyalty_points", deps.Loyalty.Points()).Info("order desk stopped")
	return runErr
}
