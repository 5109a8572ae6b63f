// Package node runs the ruby message channel: the receiver that routes
// envelopes between peers, and the node and control loops that answer
// announces, queries and service control commands.
package node

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Common errors for node operations
var (
	ErrAlreadyRunning  = errors.New("already running")
	ErrNotRunning      = errors.New("not running")
	ErrRegisterTimeout = errors.New("self-registration timed out")
)

// loop owns one goroutine that runs until its quit flag is set.
type loop struct {
	mu      sync.Mutex
	running bool
	quit    atomic.Bool
	wg      sync.WaitGroup
}

func (l *loop) begin() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrAlreadyRunning
	}
	l.running = true
	l.quit.Store(false)
	return nil
}

// abort undoes begin when startup fails before the goroutine was spawned.
func (l *loop) abort() {
	l.mu.Lock()
	l.running = false
	l.mu.Unlock()
}

func (l *loop) spawn(run func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		run()
	}()
}

// halt sets the quit flag, calls unblock so a pending receive returns, and
// joins the goroutine. It reports false when the loop was not running.
func (l *loop) halt(unblock func()) bool {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return false
	}
	l.running = false
	l.mu.Unlock()

	l.quit.Store(true)
	unblock()
	l.wg.Wait()
	return true
}

// Join blocks until the loop goroutine has returned.
func (l *loop) Join() {
	l.wg.Wait()
}

// IsRunning reports whether the loop was started and not stopped.
func (l *loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *loop) stopping() bool {
	return l.quit.Load()
}
