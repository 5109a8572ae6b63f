package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
)

// SocketType is the messaging pattern of a socket. Values match zmq.h.
type SocketType int

const (
	Pair    SocketType = 0
	Pub     SocketType = 1
	Sub     SocketType = 2
	Request SocketType = 3
	Reply   SocketType = 4
	Dealer  SocketType = 5
	Router  SocketType = 6
)

func (t SocketType) String() string {
	switch t {
	case Pair:
		return "PAIR"
	case Pub:
		return "PUB"
	case Sub:
		return "SUB"
	case Request:
		return "REQ"
	case Reply:
		return "REP"
	case Dealer:
		return "DEALER"
	case Router:
		return "ROUTER"
	}
	return fmt.Sprintf("SocketType(%d)", int(t))
}

// needsIdentity reports whether peers address this kind of socket by its
// identity frame.
func (t SocketType) needsIdentity() bool {
	return t == Dealer || t == Request || t == Router
}

// Flag modifies a send.
type Flag int

const (
	// SendMore marks a frame as part of a multi-part message still being
	// built. The message is transmitted when a frame without SendMore is sent.
	SendMore Flag = 2
)

// DefaultDialRetry is the delay between connect attempts.
const DefaultDialRetry = 250 * time.Millisecond

type socketConfig struct {
	identity  string
	dialRetry time.Duration
}

// SocketOption configures a socket at creation.
type SocketOption func(*socketConfig)

// WithIdentity sets the routing identity peers see for this socket.
func WithIdentity(id string) SocketOption {
	return func(c *socketConfig) {
		c.identity = id
	}
}

// WithDialRetry sets the delay between connect attempts.
func WithDialRetry(d time.Duration) SocketOption {
	return func(c *socketConfig) {
		c.dialRetry = d
	}
}

func newIdentity() string {
	return uuid.NewString()
}

func newZmqSocket(ctx context.Context, kind SocketType, cfg socketConfig) (zmq4.Socket, error) {
	var opts []zmq4.Option
	if cfg.identity != "" {
		opts = append(opts, zmq4.WithID(zmq4.SocketIdentity(cfg.identity)))
	}
	retry := cfg.dialRetry
	if retry <= 0 {
		retry = DefaultDialRetry
	}
	opts = append(opts, zmq4.WithDialerRetry(retry))

	switch kind {
	case Pair:
		return zmq4.NewPair(ctx, opts...), nil
	case Pub:
		return zmq4.NewPub(ctx, opts...), nil
	case Sub:
		return zmq4.NewSub(ctx, opts...), nil
	case Request:
		return zmq4.NewReq(ctx, opts...), nil
	case Reply:
		return zmq4.NewRep(ctx, opts...), nil
	case Dealer:
		return zmq4.NewDealer(ctx, opts...), nil
	case Router:
		return zmq4.NewRouter(ctx, opts...), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownSocket, int(kind))
}

// Socket is one queued endpoint created by a Context.
//
// A socket is owned by a single goroutine: Send and Receive must not be
// called concurrently. Close may be called from any goroutine.
type Socket struct {
	id       uint64
	kind     SocketType
	identity string
	ctx      *Context
	sock     zmq4.Socket

	pending   [][]byte
	closeOnce sync.Once
	closeErr  error
}

// ID returns the socket's index in its context table.
func (s *Socket) ID() uint64 {
	return s.id
}

// Type returns the socket kind.
func (s *Socket) Type() SocketType {
	return s.kind
}

// Identity returns the routing identity, empty for kinds without one.
func (s *Socket) Identity() string {
	return s.identity
}

// Context returns the owning context.
func (s *Socket) Context() *Context {
	return s.ctx
}

// Addr returns the bound address, or "" when the socket is not bound.
func (s *Socket) Addr() string {
	if a := s.sock.Addr(); a != nil {
		return a.String()
	}
	return ""
}

// Bind listens on endpoint, e.g. tcp://127.0.0.1:8520.
func (s *Socket) Bind(endpoint string) error {
	if err := s.usable("bind", endpoint); err != nil {
		return err
	}
	if err := s.sock.Listen(endpoint); err != nil {
		return s.fail(CodeBind, "bind", endpoint, err)
	}
	return nil
}

// Connect dials endpoint.
func (s *Socket) Connect(endpoint string) error {
	if err := s.usable("connect", endpoint); err != nil {
		return err
	}
	if err := s.sock.Dial(endpoint); err != nil {
		return s.fail(CodeConnect, "connect", endpoint, err)
	}
	return nil
}

// Subscribe sets a topic filter on a Sub socket.
func (s *Socket) Subscribe(topic string) error {
	if err := s.usable("subscribe", ""); err != nil {
		return err
	}
	if s.kind != Sub {
		return s.fail(CodeSubscribe, "subscribe", "", fmt.Errorf("%w: %s", ErrNotSubscriber, s.kind))
	}
	if err := s.sock.SetOption(zmq4.OptionSubscribe, topic); err != nil {
		return s.fail(CodeSubscribe, "subscribe", "", err)
	}
	return nil
}

// Send queues msg as the next frame and takes ownership of it. Without
// SendMore the queued frames are transmitted as one multi-part message.
// Router sockets expect the peer identity as the first frame.
func (s *Socket) Send(msg *Message, flags Flag) error {
	if err := s.usable("send", ""); err != nil {
		s.pending = nil
		return err
	}

	data, ok := msg.take()
	if !ok {
		s.pending = nil
		return s.fail(CodeSend, "send", "", ErrMessageConsumed)
	}
	s.pending = append(s.pending, data)
	if flags&SendMore != 0 {
		return nil
	}

	frames := s.pending
	s.pending = nil
	return s.transmit(frames)
}

// SendFrames transmits frames as one multi-part message.
func (s *Socket) SendFrames(frames ...[]byte) error {
	if err := s.usable("send", ""); err != nil {
		return err
	}
	s.pending = nil
	return s.transmit(frames)
}

func (s *Socket) transmit(frames [][]byte) error {
	var err error
	if len(frames) > 1 {
		err = s.sock.SendMulti(zmq4.NewMsgFrom(frames...))
	} else {
		err = s.sock.Send(zmq4.NewMsgFrom(frames...))
	}
	if err != nil {
		return s.fail(CodeSend, "send", "", err)
	}
	return nil
}

// Receive blocks until one complete multi-part message arrives and returns
// its frames in order. Router sockets prepend the sender's identity frame.
// Closing the socket or its context unblocks a pending Receive.
func (s *Socket) Receive() ([]*Message, error) {
	if err := s.usable("receive", ""); err != nil {
		return nil, err
	}

	msg, err := s.sock.Recv()
	if err != nil {
		code := CodeReceive
		if s.ctx.IsTerminating() {
			code = CodeTerminated
			err = fmt.Errorf("%w: %v", ErrTerminated, err)
		} else if !s.ctx.tracked(s.id) {
			code = CodeClosed
			err = fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return nil, s.fail(code, "receive", "", err)
	}

	frames := make([]*Message, len(msg.Frames))
	for i, f := range msg.Frames {
		frames[i] = Wrap(f)
	}
	return frames, nil
}

// Close releases the socket. It is idempotent and safe to call after the
// context has closed it.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		zs, ok := s.ctx.release(s.id)
		if !ok {
			return
		}
		if err := zs.Close(); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
	})
	return s.closeErr
}

// usable rejects operations on sockets that were closed directly or through
// the context.
func (s *Socket) usable(op, endpoint string) error {
	if s.ctx.IsTerminating() {
		return s.fail(CodeTerminated, op, endpoint, ErrTerminated)
	}
	if !s.ctx.tracked(s.id) {
		return s.fail(CodeClosed, op, endpoint, ErrClosed)
	}
	return nil
}

func (s *Socket) fail(code ErrorCode, op, endpoint string, err error) error {
	terr := &Error{Code: code, Op: op, Endpoint: endpoint, Err: err}
	s.ctx.report(terr, s)
	return terr
}
