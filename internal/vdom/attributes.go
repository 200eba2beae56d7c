package vdom

import "strings"

func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Key sets the sibling identity of a node; it is not rendered.
func Key(k string) Attr { return attr("key", k) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class joins classes into the class attribute, skipping empty ones.
func Class(classes ...string) Attr {
	parts := classes[:0:0]
	for _, c := range classes {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return attr("class", strings.Join(parts, " "))
}

// Style sets the inline style attribute.
func Style(style string) Attr { return attr("style", style) }

// Data sets a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

func Href(href string) Attr { return attr("href", href) }
func Target(target string) Attr { return attr("target", target) }
func Rel(rel string) Attr { return attr("rel", rel) }
func Type(t string) Attr { return attr("type", t) }
func Role(role string) Attr { return attr("role", role) }
func AriaLabel(label string) Attr { return attr("aria-label", label) }
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }
func AriaLive(mode string) Attr { return attr("aria-live", mode) }
func AriaCurrent(value string) Attr { return attr("aria-current", value) }

// Hidden sets the boolean hidden attribute.
func Hidden() Attr { return attr("hidden", true) }
