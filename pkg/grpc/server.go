// Package grpc runs the gRPC side port: the standard grpc.health.v1 service
// backed by dependency probes, plus reflection for grpcurl.
//
//	srv, err := grpc.Start(ctx, config.GRPCPort(), 15*time.Second, map[string]grpc.Probe{
//	    "database": database.Ping,
//	})
//	defer srv.Stop()
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shashiranjanraj/cafe/pkg/logger"
	"github.com/shashiranjanraj/cafe/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

var (
	handledTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cafe_grpc_handled_total",
		Help: "gRPC calls completed, by method and code.",
	}, []string{"grpc_method", "grpc_code"})

	handlingSeconds = metrics.Factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cafe_grpc_handling_seconds",
		Help:    "gRPC latency in seconds.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"grpc_method"})
)

// Probe reports whether one dependency is usable.
type Probe func(ctx context.Context) error

// Server is a gRPC server whose health status follows its probes. The
// overall service ("") is SERVING only while every probe passes.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	probes map[string]Probe
}

func New(probes map[string]Probe) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recovery, observe),
		grpc.MaxRecvMsgSize(4<<20),
		grpc.MaxSendMsgSize(4<<20),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{srv: srv, health: hs, probes: probes}
}

// Start listens on port, serves in the background and re-runs the probes
// every interval until ctx ends.
func Start(ctx context.Context, port string, interval time.Duration, probes map[string]Probe) (*Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	s := New(probes)
	s.Check(ctx)
	go s.watch(ctx, interval)
	go func() {
		if err := s.Serve(lis); err != nil {
			logger.Error("grpc: serve", "error", err)
		}
	}()
	logger.Info("grpc: listening", "addr", addr)
	return s, nil
}

// Serve blocks serving lis.
func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Check runs every probe once and publishes the results.
func (s *Server) Check(ctx context.Context) {
	names := make([]string, 0, len(s.probes))
	for name := range s.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := grpc_health_v1.HealthCheckResponse_SERVING
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.probes[name](pctx)
		cancel()

		st := grpc_health_v1.HealthCheckResponse_SERVING
		if err != nil {
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
			overall = st
			logger.Warn("grpc: health probe failed", "service", name, "error", err)
		}
		s.health.SetServingStatus(name, st)
	}
	s.health.SetServingStatus("", overall)
}

func (s *Server) watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Check(ctx)
		}
	}
}

// Stop marks every service NOT_SERVING and drains in-flight RPCs.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	logger.Info("grpc: shutting down")
	s.health.Shutdown()
	s.srv.GracefulStop()
}

func recovery(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func observe(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	dur := time.Since(start)
	code := status.Code(err)

	handledTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	handlingSeconds.WithLabelValues(info.FullMethod).Observe(dur.Seconds())
	logger.WithCtx(ctx).Debug("grpc: request", "method", info.FullMethod, "duration_ms", dur.Milliseconds(), "code", code.String())
	return resp, err
}
