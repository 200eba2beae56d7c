package section

import (
	"fmt"
	"sync"
)

// Fetcher is the type-erased view of a Memo held by a Scope.
type Fetcher interface {
	Name() string
	Reset()
	Resolved() bool
}

// Scope owns the memos of one request.
type Scope struct {
	mu    sync.Mutex
	memos map[string]Fetcher
	order []string
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{memos: make(map[string]Fetcher)}
}

// Add registers f. Names must be unique within a scope.
func (s *Scope) Add(f Fetcher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.memos[f.Name()]; dup {
		return fmt.Errorf("section %q already registered", f.Name())
	}
	s.memos[f.Name()] = f
	s.order = append(s.order, f.Name())
	return nil
}

// Get returns the fetcher registered under name.
func (s *Scope) Get(name string) (Fetcher, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.memos[name]
	return f, ok
}

// Names returns registered names in registration order.
func (s *Scope) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Reset resets every memo once.
func (s *Scope) Reset() {
	s.mu.Lock()
	memos := make([]Fetcher, 0, len(s.order))
	for _, name := range s.order {
		memos = append(memos, s.memos[name])
	}
	s.mu.Unlock()

	for _, f := range memos {
		f.Reset()
	}
}

// Lookup returns the typed memo registered under name.
func Lookup[T any](s *Scope, name string) (*Memo[T], bool) {
	f, ok := s.Get(name)
	if !ok {
		return nil, false
	}
	m, ok := f.(*Memo[T])
	return m, ok
}
