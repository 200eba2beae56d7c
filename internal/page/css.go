package page

import _ "embed"

// CriticalCSS is inlined into the head of every document so that the
// shell paints without waiting for a stylesheet.
//
//go:embed critical.css
var CriticalCSS string
