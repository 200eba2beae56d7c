package vdom

import "fmt"

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates an element with the given tag.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, or string (text).
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: make(Props),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		default:
			panic(fmt.Sprintf("vdom: unsupported argument %T for <%s>", arg, tag))
		}
	}

	return node
}

func (n *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			n.Key = s
		}
		return
	}
	n.Props[a.Key] = a.Value
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*VNode) *VNode {
	node := &VNode{Kind: KindFragment}
	for _, c := range children {
		if c != nil {
			node.Children = append(node.Children, c)
		}
	}
	return node
}

func A(args ...any) *VNode { return El("a", args...) }
func Article(args ...any) *VNode { return El("article", args...) }
func Br() *VNode { return El("br") }
func Button(args ...any) *VNode { return El("button", args...) }
func Code(args ...any) *VNode { return El("code", args...) }
func Div(args ...any) *VNode { return El("div", args...) }
func Footer(args ...any) *VNode { return El("footer", args...) }
func H1(args ...any) *VNode { return El("h1", args...) }
func H2(args ...any) *VNode { return El("h2", args...) }
func H3(args ...any) *VNode { return El("h3", args...) }
func Header(args ...any) *VNode { return El("header", args...) }
func Main(args ...any) *VNode { return El("main", args...) }
func Nav(args ...any) *VNode { return El("nav", args...) }
func P(args ...any) *VNode { return El("p", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Span(args ...any) *VNode { return El("span", args...) }
func Template(args ...any) *VNode {
	return El("template", args...)
}
