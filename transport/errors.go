package transport

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Common errors for transport operations
var (
	ErrAlreadyOpen      = errors.New("context already open")
	ErrNotOpen          = errors.New("context is not open")
	ErrTerminated       = errors.New("context is terminating")
	ErrClosed           = errors.New("socket closed")
	ErrMessageConsumed  = errors.New("message already sent")
	ErrInvalidIOThreads = errors.New("io threads must be positive")
	ErrUnknownSocket    = errors.New("unknown socket type")
	ErrNotSubscriber    = errors.New("socket type cannot subscribe")
)

// ErrorCode classifies a transport failure.
type ErrorCode int

const (
	// CodeContextOpen is reported when opening the context fails.
	CodeContextOpen ErrorCode = iota + 1
	CodeSocketCreate
	CodeBind
	CodeConnect
	CodeSend
	CodeReceive
	CodeClosed
	// CodeTerminated is reported for receive failures caused by Context.Close.
	CodeTerminated
	CodeSubscribe
)

var codeNames = map[ErrorCode]string{
	CodeContextOpen:  "context_open",
	CodeSocketCreate: "socket_create",
	CodeBind:         "bind",
	CodeConnect:      "connect",
	CodeSend:         "send",
	CodeReceive:      "receive",
	CodeClosed:       "closed",
	CodeTerminated:   "terminated",
	CodeSubscribe:    "subscribe",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a transport failure as seen by an ErrorDelegate and returned to
// the caller.
type Error struct {
	Code     ErrorCode
	Op       string
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("transport %s %s: %v", e.Op, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorDelegate observes transport failures. Sock is nil for context-level
// failures. The delegate cannot change the outcome: the failing call still
// returns the error to its caller.
type ErrorDelegate interface {
	OnError(err *Error, ctx *Context, sock *Socket)
}

// ErrorDelegateFunc adapts a function to ErrorDelegate.
type ErrorDelegateFunc func(err *Error, ctx *Context, sock *Socket)

// OnError calls f.
func (f ErrorDelegateFunc) OnError(err *Error, ctx *Context, sock *Socket) {
	f(err, ctx, sock)
}

// DiagnosticErrorDelegate logs every transport error.
type DiagnosticErrorDelegate struct {
	logger *zap.Logger
}

// NewDiagnosticErrorDelegate creates a delegate writing to logger.
func NewDiagnosticErrorDelegate(logger *zap.Logger) *DiagnosticErrorDelegate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticErrorDelegate{logger: logger.Named("transport")}
}

// OnError implements ErrorDelegate.
func (d *DiagnosticErrorDelegate) OnError(err *Error, ctx *Context, sock *Socket) {
	fields := []zap.Field{
		zap.Stringer("code", err.Code),
		zap.String("op", err.Op),
		zap.Error(err.Err),
	}
	if err.Endpoint != "" {
		fields = append(fields, zap.String("endpoint", err.Endpoint))
	}
	if sock != nil {
		fields = append(fields, zap.Stringer("socket_type", sock.Type()), zap.Uint64("socket_id", sock.ID()))
	}

	// Receive failures during shutdown are the normal way loops stop.
	if err.Code == CodeTerminated || (ctx != nil && ctx.IsTerminating()) {
		d.logger.Debug("transport error during shutdown", fields...)
		return
	}
	d.logger.Warn("transport error", fields...)
}
