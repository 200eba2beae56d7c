package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is a response's position in the streaming lifecycle.
type State uint32

const (
	StateInit State = iota
	StateShellReady
	StateSectionReady
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateShellReady:
		return "SHELL_READY"
	case StateSectionReady:
		return "SECTION_READY"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Session is the per-response bookkeeping of the responder.
type Session struct {
	// ID identifies the response in logs, traces, and the bootstrap data.
	ID string

	// Started is when the request was accepted.
	Started time.Time

	// Deadline is when the shell must have been sent.
	Deadline time.Time

	state     atomic.Uint32
	shellSent atomic.Bool
	closed    atomic.Bool
	cancel    context.CancelFunc
}

func newSession(id string, now time.Time, shellTimeout time.Duration, cancel context.CancelFunc) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:       id,
		Started:  now,
		Deadline: now.Add(shellTimeout),
		cancel:   cancel,
	}
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// ShellSent reports whether the shell has been flushed. Once true it
// never becomes false.
func (s *Session) ShellSent() bool {
	return s.shellSent.Load()
}

// Cancel aborts every in-flight fetch of the response.
func (s *Session) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) setState(to State) {
	s.state.Store(uint32(to))
}

// latchShell marks the shell as sent. It reports false if it already was.
func (s *Session) latchShell() bool {
	return s.shellSent.CompareAndSwap(false, true)
}

// latchClose reports true for the first caller only.
func (s *Session) latchClose() bool {
	return s.closed.CompareAndSwap(false, true)
}

type sessionKey struct{}

// WithSession returns ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session stored by the responder, if any.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}
