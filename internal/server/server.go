// Package server owns the process lifecycle: infrastructure boot, the HTTP
// and gRPC listeners, in-process workers and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/cafe/app/providers"
	"github.com/shashiranjanraj/cafe/config"
	"github.com/shashiranjanraj/cafe/internal/kernel"
	"github.com/shashiranjanraj/cafe/pkg/cache"
	"github.com/shashiranjanraj/cafe/pkg/database"
	"github.com/shashiranjanraj/cafe/pkg/event"
	cafegrpc "github.com/shashiranjanraj/cafe/pkg/grpc"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/queue"
	"github.com/shashiranjanraj/cafe/pkg/schedule"
	"github.com/shashiranjanraj/cafe/pkg/storage"
	"github.com/shashiranjanraj/cafe/pkg/workerpool"
)

// Boot loads configuration and connects the database, cache, queue and
// storage. Every long-running command calls it first.
func Boot(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := logger.UseMongo(ctx); err != nil {
		logger.Warn("server: mongo log sink disabled", "error", err)
	}

	if err := database.Connect(ctx); err != nil {
		return err
	}
	queue.UseDB(database.DB)

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, using memory cache", "error", err)
	} else if config.Get("QUEUE_DRIVER", "memory") == "redis" {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	storage.Connect(ctx)
	providers.Register()
	return nil
}

// Start boots the application and serves until SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Boot(ctx); err != nil {
		return err
	}
	defer logger.Close()
	defer database.Close()

	events := workerpool.New("events", config.Int("EVENT_WORKERS", 8))
	event.UsePool(events)
	providers.Boot(ctx)

	if config.Bool("QUEUE_INLINE", true) {
		queue.StartWorkers(ctx, config.Int("QUEUE_WORKERS", 2))
	}
	RegisterSchedule()
	schedule.Start(ctx)

	var rpc *cafegrpc.Server
	if port := config.GRPCPort(); port != "" {
		s, err := cafegrpc.Start(ctx, port, config.Duration("HEALTH_INTERVAL", 15*time.Second), providers.Probes())
		if err != nil {
			return err
		}
		rpc = s
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHTTPKernel().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration("SHUTDOWN_TIMEOUT", 15*time.Second))
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if rpc != nil {
		rpc.Stop()
	}
	events.Shutdown()
	return err
}

// RegisterSchedule installs the recurring maintenance tasks.
func RegisterSchedule() {
	schedule.Daily().At(config.Get("CART_PRUNE_AT", "03:00")).Name("carts:prune").WithoutOverlapping().Run(pruneCarts)
}

func pruneCarts(ctx context.Context) {
	cutoff := time.Now().Add(-config.CartTTL())
	n, err := providers.Cart().PruneStale(ctx, cutoff)
	if err != nil {
		logger.Error("schedule: prune carts", "error", err)
		return
	}
	logger.Info("schedule: pruned stale carts", "count", n, "cutoff", cutoff)
}
