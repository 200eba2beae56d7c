package stream

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamssr/streamssr/internal/errors"
	"github.com/streamssr/streamssr/internal/section"
	"github.com/streamssr/streamssr/internal/vdom"
)

// Result is the outcome of one section.
type Result struct {
	Name string
	Node *vdom.VNode
	Err  error

	// Elapsed is measured from the call to Merge.
	Elapsed time.Duration
}

// Merge resolves every section concurrently and yields the results in
// completion order. The channel is buffered for all results, so a
// consumer that stops reading never blocks a resolver, and it is closed
// once every section has reported. A panicking resolver reports an E300
// error instead of crashing the process.
func Merge(ctx context.Context, sections []section.Section) <-chan Result {
	out := make(chan Result, len(sections))
	start := time.Now()

	var g errgroup.Group
	for _, s := range sections {
		g.Go(func() error {
			node, err := resolve(ctx, s)
			out <- Result{Name: s.Name, Node: node, Err: err, Elapsed: time.Since(start)}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}

func resolve(ctx context.Context, s section.Section) (node *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			node = nil
			err = errors.New("E300").WithDetail(fmt.Sprintf("section %q panicked: %v", s.Name, r))
		}
	}()
	if s.Resolve == nil {
		return nil, errors.New("E300").WithDetail(fmt.Sprintf("section %q has no resolver", s.Name))
	}
	node, err = s.Resolve(ctx)
	if err == nil && node == nil {
		err = errors.New("E300").WithDetail(fmt.Sprintf("section %q resolved to nothing", s.Name))
	}
	return node, err
}

// withTimeout bounds each section's resolver by d. A resolver that runs
// out of budget while the request itself is still alive reports E301.
func withTimeout(sections []section.Section, d time.Duration) []section.Section {
	if d <= 0 {
		return sections
	}
	out := make([]section.Section, len(sections))
	for i, s := range sections {
		inner := s.Resolve
		out[i] = s
		if inner == nil {
			continue
		}
		out[i].Resolve = func(ctx context.Context) (*vdom.VNode, error) {
			sctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			node, err := inner(sctx)
			if err != nil && ctx.Err() == nil && sctx.Err() != nil {
				return nil, errors.New("E301").
					WithDetail(fmt.Sprintf("section %q exceeded %s", s.Name, d)).
					Wrap(err)
			}
			return node, err
		}
	}
	return out
}
