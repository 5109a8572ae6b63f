package node

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nohros/nohrosruby/protocol"
	"github.com/nohros/nohrosruby/routing"
	"github.com/nohros/nohrosruby/transport"
)

// DefaultRegisterTimeout bounds the self-registration round trip.
const DefaultRegisterTimeout = 5 * time.Second

// handlerFunc processes one packet received by a dealer loop and returns
// the reply to send, or nil.
type handlerFunc func(ctx context.Context, p *protocol.Packet) *protocol.Packet

// dealer is a loop attached to the message channel through a DEALER socket.
// On start it learns its own address by sending an empty announce, which the
// receiver echoes back stamped with the dealer's identity, and routes its
// facts to that address.
type dealer struct {
	loop

	facts    protocol.FactSet
	tctx     *transport.Context
	router   *routing.Router
	endpoint string
	timeout  time.Duration
	logger   *zap.Logger
	handle   handlerFunc

	sock    *transport.Socket
	address string
	ctx     context.Context
	cancel  context.CancelFunc
}

func newDealer(tctx *transport.Context, router *routing.Router, endpoint string, facts protocol.FactSet, logger *zap.Logger) *dealer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dealer{
		facts:    facts,
		tctx:     tctx,
		router:   router,
		endpoint: endpoint,
		timeout:  DefaultRegisterTimeout,
		logger:   logger,
	}
}

func (d *dealer) start() error {
	if err := d.begin(); err != nil {
		return err
	}

	sock, err := d.tctx.CreateSocket(transport.Dealer)
	if err != nil {
		d.abort()
		return fmt.Errorf("failed to create dealer socket: %w", err)
	}
	if err := sock.Connect(d.endpoint); err != nil {
		_ = sock.Close()
		d.abort()
		return fmt.Errorf("failed to connect to message channel: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	address, err := d.register(ctx, sock)
	if err != nil {
		cancel()
		_ = sock.Close()
		d.abort()
		return err
	}

	d.sock = sock
	d.address = address
	d.ctx, d.cancel = ctx, cancel
	d.spawn(d.run)

	d.logger.Info("registered with message channel",
		zap.String("endpoint", d.endpoint),
		zap.String("address", address),
		zap.Stringer("facts", d.facts))
	return nil
}

func (d *dealer) stop() {
	d.halt(func() {
		d.cancel()
		if err := d.sock.Close(); err != nil {
			d.logger.Debug("failed to close dealer socket", zap.Error(err))
		}
	})
}

// register performs the self-registration round trip and routes the
// dealer's facts to the learned address.
func (d *dealer) register(ctx context.Context, sock *transport.Socket) (string, error) {
	frames, err := protocol.DealerFrames(protocol.NewPacket(protocol.TypeNodeAnnounce, nil, nil))
	if err != nil {
		return "", err
	}
	if err := sendFrames(sock, frames); err != nil {
		return "", fmt.Errorf("failed to send registration: %w", err)
	}

	type result struct {
		frames [][]byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		msgs, err := sock.Receive()
		done <- result{frames: transport.Frames(msgs), err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(d.timeout):
		_ = sock.Close()
		<-done
		return "", fmt.Errorf("%w after %s", ErrRegisterTimeout, d.timeout)
	}
	if res.err != nil {
		return "", fmt.Errorf("failed to receive registration reply: %w", res.err)
	}

	reply, err := protocol.ParseDealerFrames(res.frames)
	if err != nil {
		return "", fmt.Errorf("invalid registration reply: %w", err)
	}
	address := string(reply.Sender())
	if address == "" {
		return "", errors.New("registration reply carries no address")
	}

	if err := d.router.AddRoute(ctx, address, d.facts); err != nil {
		return "", fmt.Errorf("failed to route %s: %w", d.facts, err)
	}
	return address, nil
}

// Address returns the address the loop registered under.
func (d *dealer) Address() string {
	return d.address
}

func (d *dealer) run() {
	for !d.stopping() {
		msgs, err := d.sock.Receive()
		if err != nil {
			if d.stopping() || errors.Is(err, transport.ErrTerminated) || errors.Is(err, transport.ErrClosed) {
				return
			}
			continue
		}

		packet, err := protocol.ParseDealerFrames(transport.Frames(msgs))
		if err != nil {
			d.logger.Debug("dropping invalid packet", zap.Error(err))
			continue
		}

		// Without a peer sender a reply would come straight back here.
		sender := string(packet.Sender())
		if sender == "" || sender == d.address {
			d.logger.Debug("ignoring packet without peer sender", zap.Stringer("type", packet.Message.Type))
			continue
		}

		reply := d.handle(d.ctx, packet)
		if reply == nil {
			continue
		}
		frames, err := protocol.DealerFrames(reply)
		if err != nil {
			d.logger.Warn("failed to encode reply", zap.Error(err))
			continue
		}
		if err := sendFrames(d.sock, frames); err != nil {
			d.logger.Debug("failed to send reply", zap.String("to", sender), zap.Error(err))
		}
	}
}

// exceptionReply builds an error reply to the sender of req.
func exceptionReply(req *protocol.Packet, code protocol.ExceptionCode, source string, err error) *protocol.Packet {
	// Error text may embed peer bytes; strings on the wire must be UTF-8.
	payload, merr := (&protocol.ExceptionMessage{
		Code:    code,
		Message: strings.ToValidUTF8(err.Error(), "\uFFFD"),
		Source:  strings.ToValidUTF8(source, "\uFFFD"),
	}).Marshal()
	if merr != nil {
		payload = nil
	}
	return protocol.NewReply(protocol.TypeNodeError, req.Message.ID, req.Sender(), payload)
}

func errUnsupported(t protocol.MessageType) error {
	return fmt.Errorf("unsupported message type %s", t)
}
