package node

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/routing"
	"github.com/nohros/nohrosruby/transport"
)

// ControlHandler acts on service control commands.
type ControlHandler interface {
	HandleControl(ctx context.Context, cmd *protocol.ServiceControlMessage) error
}

// ControlHandlerFunc adapts a function to ControlHandler.
type ControlHandlerFunc func(ctx context.Context, cmd *protocol.ServiceControlMessage) error

// HandleControl calls f.
func (f ControlHandlerFunc) HandleControl(ctx context.Context, cmd *protocol.ServiceControlMessage) error {
	return f(ctx, cmd)
}

// LoggingControlHandler records control commands without acting on them;
// process control belongs to the host.
type LoggingControlHandler struct {
	logger *zap.Logger
}

// NewLoggingControlHandler creates a handler writing to logger.
func NewLoggingControlHandler(logger *zap.Logger) *LoggingControlHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingControlHandler{logger: logger}
}

// HandleControl implements ControlHandler.
func (h *LoggingControlHandler) HandleControl(_ context.Context, cmd *protocol.ServiceControlMessage) error {
	h.logger.Info("service control command",
		zap.Stringer("command", cmd.Command),
		zap.Int64("service_id", cmd.ServiceID))
	return nil
}

// ControlLoop receives service control messages under {service=ruby-control}
// and passes them to a ControlHandler. Successful commands are acknowledged
// with an empty ServiceControl reply.
type ControlLoop struct {
	*dealer

	handler ControlHandler
	metrics *Metrics
}

// NewControlLoop creates a control loop connecting to endpoint. A nil
// handler logs commands.
func NewControlLoop(tctx *transport.Context, router *routing.Router, endpoint string, handler ControlHandler, metrics *Metrics, logger *zap.Logger) *ControlLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics("ruby", nil)
	}
	logger = logger.Named("control-loop")
	if handler == nil {
		handler = NewLoggingControlHandler(logger)
	}
	l := &ControlLoop{
		dealer:  newDealer(tctx, router, endpoint, protocol.ControlFacts(), logger),
		handler: handler,
		metrics: metrics,
	}
	l.handle = l.handlePacket
	return l
}

// SetRegisterTimeout bounds the self-registration round trip.
func (l *ControlLoop) SetRegisterTimeout(d time.Duration) {
	if d > 0 {
		l.timeout = d
	}
}

// Start registers the loop and begins serving.
func (l *ControlLoop) Start() error {
	return l.start()
}

// Stop sets the quit flag, closes the socket and joins the loop.
func (l *ControlLoop) Stop() {
	l.stop()
}

func (l *ControlLoop) handlePacket(ctx context.Context, p *protocol.Packet) *protocol.Packet {
	switch p.Message.Type {
	case protocol.TypeServiceControl:
	case protocol.TypeNodeError:
		return nil
	default:
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.ControlServiceName,
			errUnsupported(p.Message.Type))
	}

	cmd, err := protocol.UnmarshalServiceControl(p.Message.Payload)
	if err != nil {
		l.metrics.RecordControl("invalid", "error")
		return exceptionReply(p, protocol.ExceptionInvalidMessage, protocol.ControlServiceName, err)
	}

	if err := l.handler.HandleControl(ctx, cmd); err != nil {
		l.metrics.RecordControl(cmd.Command.String(), "error")
		l.logger.Warn("service control failed",
			zap.Stringer("command", cmd.Command),
			zap.Int64("service_id", cmd.ServiceID),
			zap.Error(err))
		return exceptionReply(p, protocol.ExceptionInternal, protocol.ControlServiceName, err)
	}

	l.metrics.RecordControl(cmd.Command.String(), "ok")
	return protocol.NewReply(protocol.TypeServiceControl, p.Message.ID, p.Sender(), nil)
}
