package routing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/registry"
)

// ErrNoServices is returned by AddRoute when the facts match no registered
// service.
var ErrNoServices = errors.New("no service matches facts")

// ServiceLookup resolves facts to registered services.
type ServiceLookup interface {
	GetServicesMetadata(ctx context.Context, facts protocol.FactSet) ([]*registry.ServiceMetadata, error)
}

// RouteSet is a list of destination addresses. A RouteSet returned by the
// router is never empty.
type RouteSet []string

// Resolution tells how a RouteSet was obtained.
type Resolution int

const (
	// Resolved means the packet facts matched live services.
	Resolved Resolution = iota
	// Reply means the packet was already stamped and goes back to its sender.
	Reply
	// Fallback means nothing matched and the packet echoes to its sender.
	Fallback
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case Reply:
		return "reply"
	}
	return "fallback"
}

// Router resolves packets into destination addresses using the registry and
// the routing table.
type Router struct {
	services ServiceLookup
	table    *Table
	logger   *zap.Logger
}

// NewRouter creates a router over services and table.
func NewRouter(services ServiceLookup, table *Table, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		services: services,
		table:    table,
		logger:   logger.Named("router"),
	}
}

// Table returns the routing table.
func (r *Router) Table() *Table {
	return r.table
}

// GetRoutes returns the destinations of a packet received from sender. An
// unstamped packet is stamped with sender and routed by its header facts.
// When nothing resolves the packet goes back to sender.
//
// A packet already carrying a non-empty Message.Sender is a reply and is routed
// to that stamped sender, not back to the transport sender. This deliberately
// departs from the plain fallback: without it a service answering a request
// would have its reply bounced back to itself. A stamped but empty sender
// still falls back to the transport sender.
func (r *Router) GetRoutes(ctx context.Context, sender []byte, packet *protocol.Packet) RouteSet {
	routes, _ := r.Resolve(ctx, sender, packet)
	return routes
}

// Resolve is GetRoutes that also reports how the routes were chosen.
func (r *Router) Resolve(ctx context.Context, sender []byte, packet *protocol.Packet) (RouteSet, Resolution) {
	fallback := RouteSet{string(sender)}
	if packet == nil || packet.Message == nil {
		return fallback, Fallback
	}

	if packet.Message.HasSender {
		if len(packet.Message.Sender) > 0 {
			return RouteSet{string(packet.Message.Sender)}, Reply
		}
		return fallback, Fallback
	}

	packet.Message.SetSender(sender)

	facts := packet.Header.Facts
	if len(facts) == 0 {
		return fallback, Fallback
	}

	matches, err := r.services.GetServicesMetadata(ctx, facts)
	if err != nil {
		r.logger.Warn("service lookup failed", zap.Stringer("facts", facts), zap.Error(err))
		return fallback, Fallback
	}

	routes := make(RouteSet, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		addr, ok := r.table.GetRoute(m.ID())
		if !ok {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		routes = append(routes, addr)
	}

	if len(routes) == 0 {
		r.logger.Debug("no live route for facts", zap.Stringer("facts", facts), zap.Int("matches", len(matches)))
		return fallback, Fallback
	}
	return routes, Resolved
}

// AddRoute routes every service matching facts to address. It fails with
// ErrNoServices when nothing matches; otherwise all matching routes are
// applied together or not at all.
func (r *Router) AddRoute(ctx context.Context, address string, facts protocol.FactSet) error {
	matches, err := r.services.GetServicesMetadata(ctx, facts)
	if err != nil {
		return fmt.Errorf("failed to resolve facts %s: %w", facts, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %s", ErrNoServices, facts)
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.ID()
	}
	if err := r.table.AddRoutes(ids, address); err != nil {
		return err
	}

	r.logger.Debug("route added",
		zap.String("address", address),
		zap.Stringer("facts", facts),
		zap.Int64s("service_ids", ids))
	return nil
}
