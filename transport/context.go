package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/go-zeromq/zmq4"
)

// Context is the socket factory for one node process.
//
// Every socket created by the context is tracked in an id-indexed table.
// Close cancels the root context and force-closes every tracked socket, so
// blocking receives on those sockets return with an error. Loops observe
// shutdown through IsTerminating or Done.
type Context struct {
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	ioThreads int
	nextID    uint64
	sockets   map[uint64]zmq4.Socket

	delegate ErrorDelegate

	opened      bool
	terminating atomic.Bool
}

// NewContext creates an unopened context.
func NewContext() *Context {
	return &Context{
		sockets:  make(map[uint64]zmq4.Socket),
		delegate: ErrorDelegateFunc(func(*Error, *Context, *Socket) {}),
	}
}

// SetErrorDelegate installs the observer of transport failures.
func (c *Context) SetErrorDelegate(d ErrorDelegate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d == nil {
		d = ErrorDelegateFunc(func(*Error, *Context, *Socket) {})
	}
	c.delegate = d
}

// Open prepares the context for socket creation. ioThreads is recorded for
// diagnostics; zmq4 services every socket from its own goroutines. Opening an
// already open context fails.
func (c *Context) Open(ioThreads int) error {
	c.mu.Lock()
	var terr *Error
	switch {
	case c.opened:
		terr = &Error{Code: CodeContextOpen, Op: "open", Err: ErrAlreadyOpen}
	case c.terminating.Load():
		terr = &Error{Code: CodeContextOpen, Op: "open", Err: ErrTerminated}
	case ioThreads < 1:
		terr = &Error{Code: CodeContextOpen, Op: "open", Err: ErrInvalidIOThreads}
	default:
		c.ctx, c.cancel = context.WithCancel(context.Background())
		c.ioThreads = ioThreads
		c.opened = true
	}
	c.mu.Unlock()

	if terr != nil {
		c.report(terr, nil)
		return terr
	}
	return nil
}

// IOThreads returns the value passed to Open.
func (c *Context) IOThreads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ioThreads
}

// IsTerminating reports whether Close has been called.
func (c *Context) IsTerminating() bool {
	return c.terminating.Load()
}

// Done is closed once the context starts terminating. It returns nil before
// Open.
func (c *Context) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return nil
	}
	return c.ctx.Done()
}

// CreateSocket creates a tracked socket of the given kind.
func (c *Context) CreateSocket(kind SocketType, opts ...SocketOption) (*Socket, error) {
	cfg := socketConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.identity == "" && kind.needsIdentity() {
		cfg.identity = newIdentity()
	}

	c.mu.Lock()
	if !c.opened {
		c.mu.Unlock()
		err := &Error{Code: CodeSocketCreate, Op: "create", Err: ErrNotOpen}
		c.report(err, nil)
		return nil, err
	}
	if c.terminating.Load() {
		c.mu.Unlock()
		err := &Error{Code: CodeSocketCreate, Op: "create", Err: ErrTerminated}
		c.report(err, nil)
		return nil, err
	}

	zs, err := newZmqSocket(c.ctx, kind, cfg)
	if err != nil {
		c.mu.Unlock()
		terr := &Error{Code: CodeSocketCreate, Op: "create", Err: err}
		c.report(terr, nil)
		return nil, terr
	}

	c.nextID++
	id := c.nextID
	c.sockets[id] = zs
	c.mu.Unlock()

	return &Socket{
		id:       id,
		kind:     kind,
		identity: cfg.identity,
		ctx:      c,
		sock:     zs,
	}, nil
}

// SocketCount returns the number of live tracked sockets.
func (c *Context) SocketCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sockets)
}

// Close cancels the context and closes every tracked socket. It is safe to
// call more than once.
func (c *Context) Close() error {
	if !c.terminating.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	sockets := c.sockets
	c.sockets = make(map[uint64]zmq4.Socket)
	c.mu.Unlock()

	var errs []error
	for _, zs := range sockets {
		if err := zs.Close(); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// release removes a socket from the table, returning its handle when it was
// still tracked.
func (c *Context) release(id uint64) (zmq4.Socket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	zs, ok := c.sockets[id]
	if ok {
		delete(c.sockets, id)
	}
	return zs, ok
}

// tracked reports whether the socket id is still live.
func (c *Context) tracked(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sockets[id]
	return ok
}

func (c *Context) report(err *Error, sock *Socket) {
	c.mu.Lock()
	d := c.delegate
	c.mu.Unlock()
	d.OnError(err, c, sock)
}
