package activation

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

// Routes served for the client runtime.
const (
	ClientPath  = "/_streamssr/client.js"
	WidgetsPath = "/_streamssr/widgets.json"
	ReloadPath  = "/_streamssr/reload"
)

//go:embed swap.js
var swapRuntime string

//go:embed client.js
var clientModule []byte

var clientETag = func() string {
	sum := sha256.Sum256(clientModule)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

// SwapRuntime returns the inline script defining window.__streamssr.
func SwapRuntime() string {
	return strings.TrimSpace(swapRuntime)
}

// Client returns the client module source.
func Client() []byte {
	return clientModule
}

// SwapCall returns the script body that moves the named fragment into
// its placeholder.
func SwapCall(name string) string {
	quoted, _ := json.Marshal(name)
	return "window.__streamssr.swap(" + string(quoted) + ")"
}

// Data is exposed to the client as window.__SSR_DATA__.
type Data struct {
	URL      string   `json:"url"`
	Session  string   `json:"session,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Widgets  string   `json:"widgets,omitempty"`
	Reload   string   `json:"reload,omitempty"`
}

// Bootstrap returns the inline script assigning d to window.__SSR_DATA__.
// encoding/json escapes <, >, and & so the payload cannot terminate the
// surrounding script element.
func Bootstrap(d Data) (string, error) {
	payload, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return "window.__SSR_DATA__ = " + string(payload) + ";", nil
}

// ClientHandler serves the client module. In production it is cached for
// a day and revalidated by ETag; otherwise it is never cached.
func ClientHandler(production bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Type", "text/javascript; charset=utf-8")
		h.Set("ETag", clientETag)
		if production {
			h.Set("Cache-Control", "public, max-age=86400")
		} else {
			h.Set("Cache-Control", "no-store")
		}
		if match := r.Header.Get("If-None-Match"); match == clientETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		if r.Method == http.MethodHead {
			return
		}
		w.Write(clientModule)
	})
}
