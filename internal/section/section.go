package section

import (
	"context"

	"github.com/streamssr/streamssr/internal/vdom"
)

// State is the readiness of a section within one response.
type State uint8

const (
	Pending State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Section is one independently streamed region of a page.
type Section struct {
	// Name is the stable identifier used for the placeholder and fragment.
	Name string

	// Title is the visible heading.
	Title string

	// Placeholder is rendered in the shell until the section resolves.
	Placeholder *vdom.VNode

	// Resolve fetches the data and returns the rendered content.
	Resolve func(ctx context.Context) (*vdom.VNode, error)
}

// Bind builds a Section whose content is view applied to memo's records.
func Bind[T any](title string, placeholder *vdom.VNode, memo *Memo[T], view func([]T) *vdom.VNode) Section {
	return Section{
		Name:        memo.Name(),
		Title:       title,
		Placeholder: placeholder,
		Resolve: func(ctx context.Context) (*vdom.VNode, error) {
			items, err := memo.Fetch(ctx)
			if err != nil {
				return nil, err
			}
			return view(items), nil
		},
	}
}
