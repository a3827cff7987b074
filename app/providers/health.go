package providers

import (
	"context"

	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/database"
	cafegrpc "github.com/shashiranjanraj/cafe/pkg/grpc"
)

// Probes are the dependency checks shared by GET /health and the gRPC
// health service.
func Probes() map[string]cafegrpc.Probe {
	return map[string]cafegrpc.Probe{
		"database": database.Ping,
		"cache":    pingCache,
	}
}

// pingCache passes for the in-memory driver.
func pingCache(ctx context.Context) error {
	if cache.RDB == nil {
		return nil
	}
	return cache.RDB.Ping(ctx).Err()
}
