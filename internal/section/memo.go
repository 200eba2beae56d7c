package section

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Source describes how to produce a section's records.
type Source[T any] struct {
	// Name identifies the section.
	Name string

	// MinDelay and MaxDelay bound the simulated latency, drawn uniformly
	// from [MinDelay, MaxDelay).
	MinDelay time.Duration
	MaxDelay time.Duration

	// Generate produces the records. It must only draw randomness from r.
	Generate func(r *rand.Rand) ([]T, error)
}

// Memo is a memoized, asynchronous fetch of a Source.
type Memo[T any] struct {
	src Source[T]

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.Mutex
	resolved bool
	val      []T
	err      error
	inflight *call[T]
}

type call[T any] struct {
	done    chan struct{}
	aborted bool
	val     []T
	err     error
}

// NewMemo creates a memo for src drawing randomness from rng. A nil rng is
// replaced by an unseeded generator.
func NewMemo[T any](src Source[T], rng *rand.Rand) *Memo[T] {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Memo[T]{src: src, rng: rng}
}

// Name returns the source name.
func (m *Memo[T]) Name() string {
	return m.src.Name
}

// Fetch returns the memoized records, starting a load if none has been made
// since the last Reset. Concurrent callers share the in-flight load. If ctx
// is cancelled while waiting, Fetch returns ctx.Err() and the memo is left
// unresolved for the next caller.
func (m *Memo[T]) Fetch(ctx context.Context) ([]T, error) {
	for {
		m.mu.Lock()
		if m.resolved {
			val, err := m.val, m.err
			m.mu.Unlock()
			return val, err
		}
		c := m.inflight
		if c == nil {
			c = &call[T]{done: make(chan struct{})}
			m.inflight = c
			go m.load(ctx, c)
		}
		m.mu.Unlock()

		select {
		case <-c.done:
			if !c.aborted {
				return c.val, c.err
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			// The caller that started the load went away; start another.
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Reset discards the memoized result. Callers waiting on a load started
// before Reset still receive its result, but it is not memoized.
func (m *Memo[T]) Reset() {
	m.mu.Lock()
	m.resolved = false
	m.val = nil
	m.err = nil
	m.inflight = nil
	m.mu.Unlock()
}

// Resolved reports whether a result is memoized.
func (m *Memo[T]) Resolved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolved
}

func (m *Memo[T]) load(ctx context.Context, c *call[T]) {
	defer close(c.done)

	timer := time.NewTimer(m.delay())
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		m.mu.Lock()
		if m.inflight == c {
			m.inflight = nil
		}
		c.aborted = true
		m.mu.Unlock()
		return
	}

	m.rngMu.Lock()
	val, err := m.src.Generate(m.rng)
	m.rngMu.Unlock()

	m.mu.Lock()
	c.val, c.err = val, err
	if m.inflight == c {
		m.inflight = nil
		m.resolved = true
		m.val, m.err = val, err
	}
	m.mu.Unlock()
}

func (m *Memo[T]) delay() time.Duration {
	lo, hi := m.src.MinDelay, m.src.MaxDelay
	if hi <= lo {
		return lo
	}
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return lo + time.Duration(m.rng.Int64N(int64(hi-lo)))
}
