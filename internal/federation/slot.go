package federation

import (
	stderrors "errors"

	"github.com/streamssr/streamssr/internal/errors"
	. "github.com/streamssr/streamssr/internal/vdom"
)

// Slot renders the placeholder for a widget. The client runtime replaces
// the skeleton with the mounted widget; resolution errors render an inline
// error instead. Extra attrs are applied to the slot element.
func Slot(r *Registry, name string, props any, attrs ...Attr) *VNode {
	w, err := r.Resolve(name, props)
	if err != nil {
		return ErrorBox(name, err)
	}
	propsJSON, err := w.PropsJSON()
	if err != nil {
		return ErrorBox(name, errors.New("E401").WithDetail(name).Wrap(stderrors.Join(ErrWidgetLoad, err)))
	}

	return Div(
		Key("widget-"+name),
		Class("federated-widget", "federated-widget--loading"),
		Data("widget", w.Name),
		Data("module", w.Module),
		Data("props", propsJSON),
		attrs,
		Skeleton(),
	)
}

// Skeleton is the loading state of a widget slot.
func Skeleton() *VNode {
	return Div(Class("federation-skeleton"),
		Div(Class("federation-skeleton__header"),
			Span("🔗"),
			Span("Loading federated component..."),
		),
		Div(Class("federation-skeleton__content"),
			Div(Class("skeleton", "skeleton--text")),
			Div(Class("skeleton", "skeleton--text"), Style("width: 80%")),
			Div(Class("skeleton", "skeleton--text"), Style("width: 60%")),
		),
	)
}

// ErrorBox renders a widget failure in place of the widget.
func ErrorBox(name string, err error) *VNode {
	msg := err.Error()
	var coded *errors.Error
	if stderrors.As(err, &coded) {
		msg = coded.Code + ": " + coded.Message
		if coded.Detail != "" {
			msg += " (" + coded.Detail + ")"
		}
	}
	return Div(Class("federation-error"), Data("widget", name), Role("alert"),
		Span("⚠️ Failed to load widget"),
		Code(msg),
	)
}
