package grpcx

import (
	"context"
	"time"

	"github.com/cwrk-planet/meeting-service/pkg/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name clients can probe besides the server-wide "".
const ServiceName = "meeting-service"

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds the gRPC server with the logging interceptors installed.
func NewServer() *grpc.Server {
	return grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(10*time.Second)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)
}

// Health publishes store reachability through grpc.health.v1.Health.
type Health struct {
	srv   *health.Server
	store Pinger
	every time.Duration
}

func NewHealth(store Pinger, every time.Duration) *Health {
	if every <= 0 {
		every = 10 * time.Second
	}
	h := &Health{srv: health.NewServer(), store: store, every: every}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func Register(s *grpc.Server, h *Health) {
	healthpb.RegisterHealthServer(s, h.srv)
	reflection.Register(s)
}

// Run probes the store until ctx is done, then reports NOT_SERVING for good.
func (h *Health) Run(ctx context.Context) error {
	h.Check(ctx)

	ticker := time.NewTicker(h.every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Check(ctx)
		case <-ctx.Done():
			h.srv.Shutdown()
			return nil
		}
	}
}

// Check probes the store once.
func (h *Health) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("store ping failed", "err", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

func (h *Health) set(s healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", s)
	h.srv.SetServingStatus(ServiceName, s)
}
