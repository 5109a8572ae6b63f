// Package admin exposes the node over HTTP and gRPC for operators: health,
// metrics, the routing table, the service registry and Arrow snapshots.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/node"
	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
	"github.com/nohros/nohrosruby/snapshot"
)

// Server is the admin HTTP API.
type Server struct {
	node     *node.Service
	gatherer prometheus.Gatherer
	exporter *snapshot.Exporter
	logger   *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates an admin server for svc. Metrics are gathered from
// gatherer; a nil gatherer uses the default registry.
func NewServer(svc *node.Service, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		node:     svc,
		gatherer: gatherer,
		exporter: snapshot.NewExporter(),
		logger:   logger.Named("admin"),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the admin routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Get("/routes", s.handleListRoutes)
	r.Delete("/routes/{id}", s.handleRemoveRoute)

	r.Get("/services", s.handleListServices)
	r.Get("/services/{id}", s.handleGetService)

	r.Get("/snapshot/services", s.handleSnapshot)
}

// StartAsync listens on addr and serves in a goroutine.
func (s *Server) StartAsync(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("admin server is already running")
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = lis
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv := s.server
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("admin server failed", zap.Error(err))
		}
	}()

	s.logger.Info("admin server listening", zap.String("addr", lis.Addr().String()))
	return nil
}

// Addr returns the listening address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the admin server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.server = nil
	s.listener = nil
	return err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type healthResponse struct {
	Status string      `json:"status"`
	Node   node.Status `json:"node"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.node.GetStatus()
	resp := healthResponse{Status: "ok", Node: st}
	code := http.StatusOK
	if !st.IsRunning {
		resp.Status = "stopped"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.node.Table().Routes())
}

func (s *Server) handleRemoveRoute(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.node.RemoveRoute(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for service %d", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type serviceView struct {
	Service *registry.ServiceMetadata `json:"service"`
	Address string                    `json:"address,omitempty"`
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		services []*registry.ServiceMetadata
		err      error
	)
	if values := r.URL.Query()["fact"]; len(values) > 0 {
		facts, perr := protocol.ParseFacts(values)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr)
			return
		}
		services, err = s.node.Registry().GetServicesMetadata(ctx, facts)
	} else {
		services, err = s.node.Registry().List(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]serviceView, 0, len(services))
	for _, m := range services {
		views = append(views, s.view(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := s.node.Registry().Get(r.Context(), id)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(m))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	services, err := s.node.Registry().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	data, err := s.exporter.SerializeServices(services, s.node.Table().Routes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", snapshot.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) view(m *registry.ServiceMetadata) serviceView {
	addr, _ := s.node.Table().GetRoute(m.ID())
	return serviceView{Service: m, Address: addr}
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid service id %q", raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
