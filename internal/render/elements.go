package render

var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"button": true,
	"code":   true,
	"em":     true,
	"i":      true,
	"label":  true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"time":   true,
}

var booleanAttrs = map[string]bool{
	"async":     true,
	"autofocus": true,
	"checked":   true,
	"defer":     true,
	"disabled":  true,
	"hidden":    true,
	"nomodule":  true,
	"open":      true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
}

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
