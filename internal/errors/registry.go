package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration & Assets (E100-E199)
	// ============================================

	"E100": {
		Category:   CategoryAssets,
		Message:    "Client manifest could not be read",
		Suggestion: "Run the client build so <dist>/client/.vite/manifest.json exists, or ignore this in development",
	},
	"E101": {
		Category:   CategoryAssets,
		Message:    "Client manifest is not valid JSON",
		Suggestion: "Rebuild the client bundle; the manifest may have been truncated",
	},
	"E102": {
		Category:   CategoryAssets,
		Message:    "Asset origin unavailable",
		Suggestion: "Check STREAMSSR_ASSETS_BUCKET and AWS credentials, or unset the bucket to serve from disk",
	},
	"E120": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be parsed",
		Suggestion: "Check that the file named by STREAMSSR_CONFIG is valid YAML",
	},
	"E121": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Suggestion: "Durations use Go syntax (e.g. 10s, 1500ms); ports must be 0-65535",
	},

	// ============================================
	// Document Render (E200-E299)
	// ============================================

	"E200": {
		Category:   CategoryRender,
		Message:    "Shell render failed",
		Suggestion: "The static fallback shell was served instead; check the page builder for this path",
	},
	"E201": {
		Category:   CategoryRender,
		Message:    "Request timeout",
		Suggestion: "The shell did not become ready before STREAMSSR_SHELL_TIMEOUT elapsed",
	},
	"E202": {
		Category:   CategoryRender,
		Message:    "Static shell could not be written",
		Suggestion: "Check that the output directory is writable",
	},

	// ============================================
	// Sections (E300-E399)
	// ============================================

	"E300": {
		Category:   CategorySection,
		Message:    "Section failed",
		Suggestion: "The section placeholder was left in place; the rest of the document was delivered",
	},
	"E301": {
		Category:   CategorySection,
		Message:    "Section fetch exceeded its budget",
		Suggestion: "Raise STREAMSSR_SECTION_TIMEOUT or reduce the provider latency",
	},

	// ============================================
	// Federation (E400-E499)
	// ============================================

	"E400": {
		Category:   CategoryFederation,
		Message:    "Widget not registered",
		Suggestion: "Register the widget in the federation registry at startup",
	},
	"E401": {
		Category:   CategoryFederation,
		Message:    "Widget failed to load",
		Suggestion: "Check that the widget remote is running and serves its remote entry",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
