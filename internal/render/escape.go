package render

import "strings"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

// escapeHTML escapes text for inclusion in element content.
func escapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// escapeAttr escapes text for inclusion in a quoted attribute value,
// including whitespace that would otherwise be normalised by the parser.
func escapeAttr(s string) string {
	return attrReplacer.Replace(s)
}

// EscapeHTML escapes s for inclusion in element content.
func EscapeHTML(s string) string { return escapeHTML(s) }

// EscapeAttr escapes s for inclusion in a quoted attribute value.
func EscapeAttr(s string) string { return escapeAttr(s) }
