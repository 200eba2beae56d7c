package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/streamssr/streamssr/internal/vdom"
)

// DocumentClose terminates a document opened by RenderDocumentOpen.
const DocumentClose = "</body></html>"

// Document describes a complete HTML page.
type Document struct {
	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// Title is the page title.
	Title string

	// Meta contains additional meta tags (charset and viewport are always
	// emitted).
	Meta []MetaTag

	// Styles contains inline CSS, emitted in order before any link.
	Styles []string

	// Links contains link tags (stylesheets, module preloads).
	Links []LinkTag

	// Scripts contains script tags emitted at the end of the head.
	Scripts []ScriptTag

	// Body is the body content.
	Body *vdom.VNode
}

// MetaTag represents a meta element in the document head.
type MetaTag struct {
	Name    string
	Content string
}

// LinkTag represents a link element in the document head.
type LinkTag struct {
	Rel         string
	Href        string
	CrossOrigin string
}

// ScriptTag represents a script element. Inline content is written
// verbatim; callers are responsible for script-context escaping.
type ScriptTag struct {
	Src    string
	Module bool
	Async  bool
	Defer  bool
	Inline string
}

// RenderDocument writes the complete document including DocumentClose.
func (r *Renderer) RenderDocument(w io.Writer, doc Document) error {
	if err := r.RenderDocumentOpen(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, DocumentClose)
	return err
}

// RenderDocumentOpen writes the prologue, head, and body content, leaving
// the body element open.
func (r *Renderer) RenderDocumentOpen(w io.Writer, doc Document) error {
	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html><html lang=\"%s\">", escapeAttr(lang)); err != nil {
		return err
	}
	if err := r.renderHead(w, doc); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<body>"); err != nil {
		return err
	}
	return r.RenderToWriter(w, doc.Body)
}

func (r *Renderer) renderHead(w io.Writer, doc Document) error {
	var b strings.Builder

	b.WriteString(`<head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	for _, m := range doc.Meta {
		fmt.Fprintf(&b, `<meta name="%s" content="%s">`, escapeAttr(m.Name), escapeAttr(m.Content))
	}
	if doc.Title != "" {
		fmt.Fprintf(&b, "<title>%s</title>", escapeHTML(doc.Title))
	}
	for _, css := range doc.Styles {
		b.WriteString("<style>")
		b.WriteString(css)
		b.WriteString("</style>")
	}
	for _, l := range doc.Links {
		renderLinkTag(&b, l)
	}
	for _, s := range doc.Scripts {
		renderScriptTag(&b, s)
	}
	b.WriteString("</head>")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderLinkTag(b *strings.Builder, l LinkTag) {
	fmt.Fprintf(b, `<link rel="%s" href="%s"`, escapeAttr(l.Rel), escapeAttr(l.Href))
	if l.CrossOrigin != "" {
		fmt.Fprintf(b, ` crossorigin="%s"`, escapeAttr(l.CrossOrigin))
	}
	b.WriteString(">")
}

func renderScriptTag(b *strings.Builder, s ScriptTag) {
	b.WriteString("<script")
	if s.Module {
		b.WriteString(` type="module"`)
	}
	if s.Src != "" {
		fmt.Fprintf(b, ` src="%s"`, escapeAttr(s.Src))
	}
	if s.Async {
		b.WriteString(" async")
	}
	if s.Defer {
		b.WriteString(" defer")
	}
	b.WriteString(">")
	if s.Src == "" {
		b.WriteString(s.Inline)
	}
	b.WriteString("</script>")
}
