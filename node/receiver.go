package node

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/routing"
	"github.com/nohros/nohrosruby/transport"
)

// Receiver owns the ROUTER socket bound to the message channel. It splits
// each received message into [address][empty][payload] envelopes, asks the
// router where every packet goes and forwards it.
type Receiver struct {
	loop

	tctx     *transport.Context
	router   *routing.Router
	endpoint string
	metrics  *Metrics
	logger   *zap.Logger

	sock   *transport.Socket
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReceiver creates a receiver that will bind endpoint.
func NewReceiver(tctx *transport.Context, router *routing.Router, endpoint string, metrics *Metrics, logger *zap.Logger) *Receiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics("ruby", nil)
	}
	return &Receiver{
		tctx:     tctx,
		router:   router,
		endpoint: endpoint,
		metrics:  metrics,
		logger:   logger.Named("receiver"),
	}
}

// Start binds the message channel and begins receiving.
func (r *Receiver) Start() error {
	if err := r.begin(); err != nil {
		return err
	}

	sock, err := r.tctx.CreateSocket(transport.Router)
	if err != nil {
		r.abort()
		return fmt.Errorf("failed to create receiver socket: %w", err)
	}
	if err := sock.Bind(r.endpoint); err != nil {
		_ = sock.Close()
		r.abort()
		return fmt.Errorf("failed to bind message channel: %w", err)
	}

	r.sock = sock
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.spawn(r.run)

	r.logger.Info("message channel listening", zap.String("endpoint", r.Endpoint()))
	return nil
}

// Stop sets the quit flag, closes the socket and joins the loop.
func (r *Receiver) Stop() {
	r.halt(func() {
		r.cancel()
		if err := r.sock.Close(); err != nil {
			r.logger.Debug("failed to close message channel", zap.Error(err))
		}
	})
}

// Endpoint returns the bound endpoint. When the configured port was 0 the
// port chosen by the system is reported once the receiver started.
func (r *Receiver) Endpoint() string {
	if r.sock != nil {
		if addr := r.sock.Addr(); addr != "" {
			return "tcp://" + addr
		}
	}
	return r.endpoint
}

func (r *Receiver) run() {
	for !r.stopping() {
		msgs, err := r.sock.Receive()
		if err != nil {
			if r.stopping() || errors.Is(err, transport.ErrTerminated) || errors.Is(err, transport.ErrClosed) {
				return
			}
			continue
		}
		r.Dispatch(r.ctx, transport.Frames(msgs))
	}
}

// Dispatch routes one received multi-part message. A message whose frame
// count is not a multiple of three is dropped whole; inside a valid message
// each envelope is handled on its own.
func (r *Receiver) Dispatch(ctx context.Context, frames [][]byte) {
	r.metrics.MessagesReceived.Inc()

	if len(frames) == 0 || len(frames)%protocol.FramesPerEnvelope != 0 {
		r.metrics.RecordDropped(DropFrameCount)
		r.logger.Debug("dropping message with invalid frame count", zap.Int("frames", len(frames)))
		return
	}

	for i := 0; i < len(frames); i += protocol.FramesPerEnvelope {
		r.route(ctx, frames[i], frames[i+1], frames[i+2])
	}
}

func (r *Receiver) route(ctx context.Context, sender, delimiter, payload []byte) {
	if len(delimiter) != 0 {
		r.metrics.RecordDropped(DropDelimiter)
		r.logger.Debug("dropping envelope with non-empty delimiter", zap.ByteString("sender", sender))
		return
	}

	packet, err := protocol.RequireMessage(payload)
	if err != nil {
		r.metrics.RecordDropped(DropDecode)
		r.logger.Debug("dropping undecodable packet", zap.ByteString("sender", sender), zap.Error(err))
		return
	}

	r.router.Table().Touch(string(sender))

	routes, how := r.router.Resolve(ctx, sender, packet)
	r.metrics.RecordResolution(how)

	for _, dest := range routes {
		frames, err := protocol.EncodeEnvelope([]byte(dest), packet)
		if err != nil {
			r.metrics.RecordDropped(DropEncode)
			r.logger.Warn("failed to encode packet", zap.Error(err))
			return
		}
		if err := sendFrames(r.sock, frames); err != nil {
			r.metrics.RecordDropped(DropSend)
			r.logger.Debug("failed to forward packet", zap.String("destination", dest), zap.Error(err))
			continue
		}
		r.metrics.MessagesDispatched.Inc()
	}

	r.logger.Debug("packet routed",
		zap.ByteString("sender", sender),
		zap.Stringer("type", packet.Message.Type),
		zap.Stringer("resolution", how),
		zap.Strings("routes", routes))
}

// sendFrames hands each frame to sock, marking all but the last with
// SendMore so they leave as one multi-part message.
func sendFrames(sock *transport.Socket, frames [][]byte) error {
	for i, f := range frames {
		flags := transport.SendMore
		if i == len(frames)-1 {
			flags = 0
		}
		if err := sock.Send(transport.NewMessage(f), flags); err != nil {
			return err
		}
	}
	return nil
}
