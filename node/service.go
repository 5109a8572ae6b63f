package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/config"
	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
	"github.com/nohros/nohrosruby/routing"
	"github.com/nohros/nohrosruby/transport"
)

// Status represents the current status of the node service.
type Status struct {
	Endpoint       string    `json:"endpoint"`
	TrackerAddress string    `json:"service_tracker_address"`
	IsRunning      bool      `json:"is_running"`
	NodeAddress    string    `json:"node_address,omitempty"`
	ControlAddress string    `json:"control_address,omitempty"`
	Routes         int       `json:"routes"`
	Sockets        int       `json:"sockets"`
	StartedAt      time.Time `json:"started_at,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics the service and its loops record to.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithControlHandler sets the handler of service control commands.
func WithControlHandler(h ControlHandler) Option {
	return func(s *Service) {
		s.control = h
	}
}

// Service orchestrates the node: transport context, routing table, router,
// receiver, node loop, control loop and the route sweeper.
type Service struct {
	config   config.NodeConfig
	registry *registry.Database
	table    *routing.Table
	router   *routing.Router
	metrics  *Metrics
	control  ControlHandler
	logger   *zap.Logger

	tctx        *transport.Context
	receiver    *Receiver
	nodeLoop    *NodeLoop
	controlLoop *ControlLoop
	reserved    map[int64]struct{}

	mu        sync.RWMutex
	running   bool
	startedAt time.Time
	stopSweep chan struct{}
	wg        sync.WaitGroup
}

// NewService creates a node service over the given registry.
func NewService(cfg config.NodeConfig, db *registry.Database, opts ...Option) *Service {
	s := &Service{
		config:   cfg,
		registry: db,
		table:    routing.NewTable(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("ruby", nil)
	}
	s.logger = s.logger.Named("node")
	s.router = routing.NewRouter(db, s.table, s.logger)
	return s
}

// Start seeds the reserved services, opens the transport and starts the
// receiver, both loops and, when a route TTL is set, the sweeper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	reserved, err := s.seedReserved(ctx)
	if err != nil {
		return err
	}
	s.reserved = reserved

	tctx := transport.NewContext()
	tctx.SetErrorDelegate(transport.NewDiagnosticErrorDelegate(s.logger))
	if err := tctx.Open(s.config.IOThreads); err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}

	receiver := NewReceiver(tctx, s.router, s.config.MessageChannelEndpoint(), s.metrics, s.logger)
	if err := receiver.Start(); err != nil {
		_ = tctx.Close()
		return fmt.Errorf("failed to start receiver: %w", err)
	}

	tracker := s.config.ServiceTrackerAddress
	if tracker == "" {
		tracker = receiver.Endpoint()
	}

	nodeLoop := NewNodeLoop(tctx, s.router, s.registry, tracker, s.metrics, s.logger)
	nodeLoop.SetRegisterTimeout(s.config.RegisterTimeout)
	nodeLoop.SetReservedServices(s.reserved)
	if err := nodeLoop.Start(); err != nil {
		receiver.Stop()
		_ = tctx.Close()
		return fmt.Errorf("failed to start node loop: %w", err)
	}

	controlLoop := NewControlLoop(tctx, s.router, tracker, s.control, s.metrics, s.logger)
	controlLoop.SetRegisterTimeout(s.config.RegisterTimeout)
	if err := controlLoop.Start(); err != nil {
		nodeLoop.Stop()
		receiver.Stop()
		_ = tctx.Close()
		return fmt.Errorf("failed to start control loop: %w", err)
	}

	s.tctx = tctx
	s.receiver = receiver
	s.nodeLoop = nodeLoop
	s.controlLoop = controlLoop

	if s.config.RouteTTL > 0 {
		interval := s.config.SweepInterval
		if interval <= 0 {
			interval = s.config.RouteTTL / 2
		}
		s.stopSweep = make(chan struct{})
		s.wg.Add(1)
		go s.sweepRoutes(interval, s.stopSweep)
	}

	s.running = true
	s.startedAt = time.Now()
	s.refreshGauges(ctx)

	s.logger.Info("node started",
		zap.String("endpoint", receiver.Endpoint()),
		zap.String("tracker", tracker),
		zap.Duration("route_ttl", s.config.RouteTTL))
	return nil
}

// Stop shuts the node down in reverse start order and closes the transport.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.stopSweep != nil {
		close(s.stopSweep)
		s.wg.Wait()
		s.stopSweep = nil
	}

	s.controlLoop.Stop()
	s.nodeLoop.Stop()
	s.receiver.Stop()
	if err := s.tctx.Close(); err != nil {
		s.logger.Warn("failed to close transport", zap.Error(err))
	}

	s.running = false
	s.logger.Info("node stopped")
}

// seedReserved makes sure the node and control services exist and returns
// their ids, which the sweeper never removes.
func (s *Service) seedReserved(ctx context.Context) (map[int64]struct{}, error) {
	reserved := map[string]protocol.FactSet{
		protocol.NodeServiceName:    protocol.NodeFacts(),
		protocol.ControlServiceName: protocol.ControlFacts(),
	}

	ids := make(map[int64]struct{}, len(reserved))
	for name, facts := range reserved {
		if _, err := s.registry.Ensure(ctx, facts, registry.NewServiceMetadata(name, registry.RuntimeMachineCode, "", "")); err != nil {
			return nil, fmt.Errorf("failed to register %s service: %w", name, err)
		}
		matches, err := s.registry.GetServicesMetadata(ctx, facts)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			ids[m.ID()] = struct{}{}
		}
	}
	return ids, nil
}

// sweepRoutes periodically removes stale routes.
func (s *Service) sweepRoutes(interval time.Duration, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep removes routes whose address has not been heard from within the
// route TTL. Routes of the node's own loops are kept. It returns the removed
// service ids.
func (s *Service) Sweep() []int64 {
	if s.config.RouteTTL <= 0 {
		return nil
	}

	removed := s.table.Sweep(time.Now().Add(-s.config.RouteTTL), s.reserved)
	if len(removed) > 0 {
		s.metrics.RoutesSwept.Add(float64(len(removed)))
		s.logger.Info("stale routes removed", zap.Int64s("service_ids", removed))
	}
	s.metrics.UpdateRoutes(s.table.Len())
	return removed
}

func (s *Service) refreshGauges(ctx context.Context) {
	s.metrics.UpdateRoutes(s.table.Len())
	services, err := s.registry.List(ctx)
	if err != nil {
		s.logger.Warn("failed to count services", zap.Error(err))
		return
	}
	s.metrics.UpdateServices(len(services))
}

// RemoveRoute drops the route of a service.
func (s *Service) RemoveRoute(serviceID int64) bool {
	ok := s.table.RemoveRoute(serviceID)
	s.metrics.UpdateRoutes(s.table.Len())
	return ok
}

// Router returns the message router.
func (s *Service) Router() *routing.Router {
	return s.router
}

// Table returns the routing table.
func (s *Service) Table() *routing.Table {
	return s.table
}

// Registry returns the service registry.
func (s *Service) Registry() *registry.Database {
	return s.registry
}

// Metrics returns the node metrics.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// IsRunning returns whether the service is currently running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Endpoint returns the message channel endpoint.
func (s *Service) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.receiver != nil && s.running {
		return s.receiver.Endpoint()
	}
	return s.config.MessageChannelEndpoint()
}

// GetStatus returns the current status of the node service.
func (s *Service) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Endpoint:       s.config.MessageChannelEndpoint(),
		TrackerAddress: s.config.TrackerEndpoint(),
		IsRunning:      s.running,
		Routes:         s.table.Len(),
	}
	if s.running {
		st.Endpoint = s.receiver.Endpoint()
		st.NodeAddress = s.nodeLoop.Address()
		st.ControlAddress = s.controlLoop.Address()
		st.Sockets = s.tctx.SocketCount()
		st.StartedAt = s.startedAt
	}
	return st
}
