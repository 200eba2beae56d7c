package federation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/streamssr/streamssr/internal/errors"
)

var (
	// ErrWidgetNotFound is returned when no widget is registered under a name.
	ErrWidgetNotFound = stderrors.New("widget not registered")

	// ErrWidgetLoad is returned when a registered widget rejects its props.
	ErrWidgetLoad = stderrors.New("widget failed to load")
)

// Validator is implemented by props that can check themselves.
type Validator interface {
	Validate() error
}

// Widget is a resolved widget ready to be mounted.
type Widget struct {
	// Name is the exposed module name, e.g. "AnalyticsWidget".
	Name string

	// Module is the URL of the remote entry exposing the widget.
	Module string

	// Props are passed to the widget on mount.
	Props any
}

// PropsJSON encodes the widget props.
func (w Widget) PropsJSON() (string, error) {
	if w.Props == nil {
		return "{}", nil
	}
	data, err := json.Marshal(w.Props)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Factory builds a widget from props.
type Factory func(props any) (Widget, error)

// Typed returns a factory for a widget taking props of type P. Props of a
// different type, or props failing validation, are rejected.
func Typed[P any](name, module string) Factory {
	return func(props any) (Widget, error) {
		var p P
		switch v := props.(type) {
		case nil:
		case P:
			p = v
		case *P:
			if v != nil {
				p = *v
			}
		default:
			return Widget{}, fmt.Errorf("%s: props must be %T, got %T", name, p, props)
		}
		if v, ok := any(p).(Validator); ok {
			if err := v.Validate(); err != nil {
				return Widget{}, fmt.Errorf("%s: %w", name, err)
			}
		}
		return Widget{Name: name, Module: module, Props: p}, nil
	}
}

// Descriptor is the public listing of a registered widget.
type Descriptor struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// Registry maps widget names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	modules   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		modules:   make(map[string]string),
	}
}

// Register adds a factory under name; module is listed in Descriptors.
// Registering a name twice replaces the earlier factory.
func (r *Registry) Register(name, module string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	r.modules[name] = module
}

// Resolve builds the widget registered under name. Errors satisfy
// errors.Is with ErrWidgetNotFound or ErrWidgetLoad.
func (r *Registry) Resolve(name string, props any) (Widget, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return Widget{}, errors.New("E400").WithDetail(name).Wrap(ErrWidgetNotFound)
	}

	w, err := f(props)
	if err != nil {
		return Widget{}, errors.New("E401").WithDetail(err.Error()).Wrap(stderrors.Join(ErrWidgetLoad, err))
	}
	if _, err := w.PropsJSON(); err != nil {
		return Widget{}, errors.New("E401").WithDetail(name).Wrap(stderrors.Join(ErrWidgetLoad, err))
	}
	return w, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Descriptors lists registered widgets in name order.
func (r *Registry) Descriptors() []Descriptor {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(names))
	for i, n := range names {
		out[i] = Descriptor{Name: n, Module: r.modules[n]}
	}
	return out
}

// Widget names exposed by the remote bundle.
const (
	AnalyticsWidget    = "AnalyticsWidget"
	NotificationWidget = "NotificationWidget"
	ChatWidget         = "ChatWidget"
)

// Default returns a registry with the standard widgets served from remote.
func Default(remote string) *Registry {
	r := NewRegistry()
	r.Register(AnalyticsWidget, remote, Typed[AnalyticsProps](AnalyticsWidget, remote))
	r.Register(NotificationWidget, remote, Typed[NotificationProps](NotificationWidget, remote))
	r.Register(ChatWidget, remote, Typed[ChatProps](ChatWidget, remote))
	return r
}
