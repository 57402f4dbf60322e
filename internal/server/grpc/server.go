// Package grpc serves the standard grpc.health.v1 protocol. The anomaly
// service is reported SERVING only while a trained model is loaded, so
// orchestrators can gate traffic on model readiness.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AnomalyService is the health service name tracking model readiness.
const AnomalyService = "secanalytics.anomaly"

const defaultRefresh = 5 * time.Second

type Readiness interface {
	IsTrained() bool
}

type HealthServer struct {
	address   string
	logger    logging.Logger
	readiness Readiness
	refresh   time.Duration
	health    *health.Server
}

func NewHealthServer(a string, l logging.Logger, r Readiness) *HealthServer {
	return &HealthServer{
		address:   a,
		logger:    l.With("module", "grpc_health"),
		readiness: r,
		refresh:   defaultRefresh,
		health:    health.NewServer(),
	}
}

// Refresh publishes the current readiness. The overall ("") service is
// always SERVING while the process runs.
func (s *HealthServer) Refresh() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	st := healthpb.HealthCheckResponse_NOT_SERVING
	if s.readiness.IsTrained() {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(AnomalyService, st)
}

// Register attaches the health service to srv.
func (s *HealthServer) Register(srv *grpc.Server) {
	s.Refresh()
	healthpb.RegisterHealthServer(srv, s.health)
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.loggingInterceptor))
	s.Register(srv)

	go func() {
		t := time.NewTicker(s.refresh)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping gRPC health server...")
				s.health.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				s.Refresh()
			}
		}
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
