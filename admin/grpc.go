package admin

import (
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthServiceName is the gRPC health service name of the node.
const HealthServiceName = "ruby.node"

// HealthServer serves the standard gRPC health protocol for the node.
type HealthServer struct {
	health     *health.Server
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *zap.Logger

	running bool
	mu      sync.Mutex
}

// NewHealthServer creates a health server reporting NOT_SERVING until
// SetServing is called.
func NewHealthServer(logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		health: hs,
		logger: logger.Named("grpc"),
	}
}

// StartAsync starts the gRPC server on address and returns immediately.
func (s *HealthServer) StartAsync(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.listener = lis

	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)

	s.running = true

	srv := s.grpcServer
	go func() {
		_ = srv.Serve(lis)
	}()

	s.logger.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	return nil
}

// SetServing reports the node as serving or not.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(HealthServiceName, status)
}

// Addr returns the listening address, or "" when stopped.
func (s *HealthServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop marks every service NOT_SERVING and gracefully stops the server.
func (s *HealthServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.health.Shutdown()
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	s.listener = nil
}
