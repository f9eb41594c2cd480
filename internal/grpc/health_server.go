package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
	"github.com/soltixdb/diskhealth/internal/utils"
)

// ControlStoreService is the health service name that tracks the control
// store. The empty name tracks the process as a whole.
const ControlStoreService = "diskhealth.ControlStore"

// HealthServer serves the standard gRPC health protocol next to the HTTP API
type HealthServer struct {
	address    string
	grpcServer *grpc.Server
	health     *health.Server
	store      metadata.ControlStore
	interval   time.Duration
	logger     *logging.Logger

	stopOnce sync.Once
}

// NewHealthServer creates a health server. store may be nil, in which case
// the control store service reports NOT_SERVING.
func NewHealthServer(address string, store metadata.ControlStore, logger *logging.Logger) *HealthServer {
	if logger == nil {
		logger = logging.Global()
	}
	return &HealthServer{
		address:  address,
		health:   health.NewServer(),
		store:    store,
		interval: utils.StoreCheckInterval,
		logger:   logger.With("component", "grpc"),
	}
}

// Start listens on the configured address and serves until ctx is done
func (s *HealthServer) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done
func (s *HealthServer) Serve(ctx context.Context, listener net.Listener) error {
	s.grpcServer = grpc.NewServer(
		grpc.MaxRecvMsgSize(utils.GRPCMaxMessageSize),
		grpc.MaxSendMsgSize(utils.GRPCMaxMessageSize),
	)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.CheckStore(ctx)

	s.logger.Info("gRPC server starting", "address", listener.Addr().String())
	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			s.logger.Error("gRPC server error", "error", err)
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down gRPC server")
			s.Stop()
			return nil
		case <-ticker.C:
			s.CheckStore(ctx)
		}
	}
}

// CheckStore updates the control store service status from a list call
func (s *HealthServer) CheckStore(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.store == nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	} else {
		checkCtx, cancel := context.WithTimeout(ctx, utils.ControlStoreTimeout)
		_, err := s.store.ListPDisks(checkCtx)
		cancel()
		if err != nil {
			s.logger.Warn("Control store check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ControlStoreService, status)
}

// Stop marks every service NOT_SERVING and stops the server gracefully
func (s *HealthServer) Stop() {
	s.stopOnce.Do(func() {
		s.health.Shutdown()
		if s.grpcServer != nil {
			s.logger.Info("Stopping gRPC server")
			s.grpcServer.GracefulStop()
		}
	})
}
