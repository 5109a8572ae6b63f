package node

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/routing"
	"github.com/nohros/nohrosruby/transport"
)

// NodeLoop is the ruby service itself. It registers under {service=ruby}
// and answers announces and service queries.
type NodeLoop struct {
	*dealer

	services routing.ServiceLookup
	metrics  *Metrics
	reserved map[int64]struct{}
}

// errReservedFacts is returned to peers announcing facts that resolve to a
// service owned by the node.
var errReservedFacts = errors.New("announced facts resolve to a reserved service")

// NewNodeLoop creates a node loop connecting to endpoint.
func NewNodeLoop(tctx *transport.Context, router *routing.Router, services routing.ServiceLookup, endpoint string, metrics *Metrics, logger *zap.Logger) *NodeLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics("ruby", nil)
	}
	l := &NodeLoop{
		dealer:   newDealer(tctx, router, endpoint, protocol.NodeFacts(), logger.Named("node-loop")),
		services: services,
		metrics:  metrics,
	}
	l.handle = l.handlePacket
	return l
}

// SetRegisterTimeout bounds the self-registration round trip.
func (l *NodeLoop) SetRegisterTimeout(d time.Duration) {
	if d > 0 {
		l.timeout = d
	}
}

// SetReservedServices sets the ids of the services only the node may route.
// Announces resolving to any of them are rejected.
func (l *NodeLoop) SetReservedServices(ids map[int64]struct{}) {
	l.reserved = ids
}

// Start registers the loop and begins serving.
func (l *NodeLoop) Start() error {
	return l.start()
}

// Stop sets the quit flag, closes the socket and joins the loop.
func (l *NodeLoop) Stop() {
	l.stop()
}

func (l *NodeLoop) handlePacket(ctx context.Context, p *protocol.Packet) *protocol.Packet {
	switch p.Message.Type {
	case protocol.TypeNodeAnnounce:
		return l.handleAnnounce(ctx, p)
	case protocol.TypeNodeQuery:
		return l.handleQuery(ctx, p)
	case protocol.TypeNodeError:
		// Exceptions are never answered.
		if exc, err := protocol.UnmarshalException(p.Message.Payload); err == nil {
			l.logger.Info("peer reported an error",
				zap.ByteString("sender", p.Sender()),
				zap.Int32("code", int32(exc.Code)),
				zap.String("message", exc.Message),
				zap.String("source", exc.Source))
		}
		return nil
	}
	return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.NodeServiceName, errUnsupported(p.Message.Type))
}

// handleAnnounce routes the announced facts to the announcer.
func (l *NodeLoop) handleAnnounce(ctx context.Context, p *protocol.Packet) *protocol.Packet {
	l.metrics.Announces.Inc()

	announce, err := protocol.UnmarshalAnnounce(p.Message.Payload)
	if err != nil {
		l.metrics.AnnounceFailed.Inc()
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.NodeServiceName, err)
	}
	if len(announce.Facts) == 0 {
		l.metrics.AnnounceFailed.Inc()
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.NodeServiceName,
			errors.New("announce carries no facts"))
	}

	sender := string(p.Sender())
	reserved, err := l.resolvesReserved(ctx, announce.Facts)
	if err != nil {
		l.metrics.AnnounceFailed.Inc()
		return exceptionReply(p, protocol.ExceptionInternal, protocol.NodeServiceName, err)
	}
	if reserved {
		l.metrics.AnnounceFailed.Inc()
		l.logger.Warn("rejected announce of reserved service",
			zap.String("sender", sender),
			zap.Stringer("facts", announce.Facts))
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.NodeServiceName, errReservedFacts)
	}
	if err := l.router.AddRoute(ctx, sender, announce.Facts); err != nil {
		l.metrics.AnnounceFailed.Inc()
		code := protocol.ExceptionInternal
		if errors.Is(err, routing.ErrNoServices) {
			code = protocol.ExceptionNoServices
		}
		l.logger.Info("announce created no route",
			zap.String("sender", sender),
			zap.Stringer("facts", announce.Facts),
			zap.Error(err))
		return exceptionReply(p, code, protocol.NodeServiceName, err)
	}
	l.metrics.UpdateRoutes(l.router.Table().Len())

	l.logger.Info("service announced", zap.String("address", sender), zap.Stringer("facts", announce.Facts))
	return protocol.NewReply(protocol.TypeNodeAnnounce, p.Message.ID, p.Sender(), nil)
}

// resolvesReserved reports whether facts match any reserved service.
func (l *NodeLoop) resolvesReserved(ctx context.Context, facts protocol.FactSet) (bool, error) {
	if len(l.reserved) == 0 {
		return false, nil
	}
	matches, err := l.services.GetServicesMetadata(ctx, facts)
	if err != nil {
		return false, err
	}
	for _, m := range matches {
		if _, ok := l.reserved[m.ID()]; ok {
			return true, nil
		}
	}
	return false, nil
}

// handleQuery lists the services matching the queried facts together with
// their live addresses. Offline services carry an empty address.
func (l *NodeLoop) handleQuery(ctx context.Context, p *protocol.Packet) *protocol.Packet {
	l.metrics.Queries.Inc()

	query, err := protocol.UnmarshalQuery(p.Message.Payload)
	if err != nil {
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.NodeServiceName, err)
	}

	matches, err := l.services.GetServicesMetadata(ctx, query.Facts)
	if err != nil {
		return exceptionReply(p, protocol.ExceptionInternal, protocol.NodeServiceName, err)
	}

	reply := &protocol.QueryReply{Services: make([]protocol.ServiceInfo, 0, len(matches))}
	for _, m := range matches {
		addr, _ := l.router.Table().GetRoute(m.ID())
		reply.Services = append(reply.Services, m.ServiceInfo(addr))
	}
	payload, err := reply.Marshal()
	if err != nil {
		return exceptionReply(p, protocol.ExceptionInternal, protocol.NodeServiceName, err)
	}
	return protocol.NewReply(protocol.TypeNodeQuery, p.Message.ID, p.Sender(), payload)
}
