package app

import (
	"context"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestGRPCServer_HealthLifecycle(t *testing.T) {
	srv := newGRPCServer(log.WithField("test", "grpc"))
	addr, err := srv.serve("127.0.0.1:0")
	require.NoError(t, err)

	conn, err := grpc.NewClient(addr.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: grpcHealthService})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	srv.health.Shutdown()
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	srv.stop()
}

func TestGRPCServer_ReusesRegisteredMetrics(t *testing.T) {
	require.NotPanics(t, func() {
		newGRPCServer(log.WithField("test", "grpc-1")).server.Stop()
		newGRPCServer(log.WithField("test", "grpc-2")).server.Stop()
	})
}
