package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"

	cafegrpc "github.com/shashiranjanraj/cafe/pkg/grpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, s *cafegrpc.Server) grpc_health_v1.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go s.Serve(lis) //nolint:errcheck
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func status(t *testing.T, c grpc_health_v1.HealthClient, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	res, err := c.Check(t.Context(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return res.Status
}

func TestHealthFollowsProbes(t *testing.T) {
	dbDown := false
	s := cafegrpc.New(map[string]cafegrpc.Probe{
		"database": func(context.Context) error {
			if dbDown {
				return errors.New("connection refused")
			}
			return nil
		},
		"cache": func(context.Context) error { return nil },
	})
	client := dial(t, s)

	s.Check(t.Context())
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, "database"))

	dbDown = true
	s.Check(t.Context())
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, ""))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, client, "database"))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, client, "cache"))
}
