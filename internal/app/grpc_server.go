package app

import (
	"net"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// grpcHealthService — имя сервиса стойки в gRPC health.
const grpcHealthService = "coffeeshop.Desk"

// grpcServer — gRPC health endpoint для оркестраторов, не умеющих HTTP-пробы.
type grpcServer struct {
	server *grpc.Server
	health *health.Server
	logger *log.Entry
}

// newGRPCServer собирает сервер с метриками, reflection и health.
func newGRPCServer(logger *log.Entry) *grpcServer {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)
	grpcMetrics.InitializeMetrics(server)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcHealthService, healthpb.HealthCheckResponse_SERVING)

	return &grpcServer{server: server, health: healthServer, logger: logger}
}

// serve слушает addr в отдельной горутине и возвращает фактический адрес.
func (s *grpcServer) serve(addr string) (net.Addr, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	go func() {
		s.logger.Infof("gRPC health listening on %s", lis.Addr())
		if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			s.logger.WithError(err).Warn("gRPC server failed")
		}
	}()
	return lis.Addr(), nil
}

// stop переводит health в NOT_SERVING и останавливает сервер, не дольше shutdownTimeout.
func (s *grpcServer) stop() {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		s.logger.Warn("graceful stop timed out, forcing gRPC shutdown")
		s.server.Stop()
	}
}
