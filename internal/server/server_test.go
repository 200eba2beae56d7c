package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/streamssr/streamssr/internal/activation"
	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/config"
	"github.com/streamssr/streamssr/internal/dev"
	"github.com/streamssr/streamssr/internal/federation"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/render"
	"github.com/streamssr/streamssr/internal/shell"
	"github.com/streamssr/streamssr/internal/telemetry"
)

type fixture struct {
	cfg  *config.Config
	logs *bytes.Buffer
	deps Deps
}

func newFixture(t *testing.T, env string) *fixture {
	t.Helper()
	dist := t.TempDir()
	assetsDir := filepath.Join(dist, "client", "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetsDir, "app-1a2b3c4d.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.New()
	cfg.Env = env
	cfg.DistDir = dist

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	reg := prometheus.NewRegistry()
	widgets := federation.Default(cfg.Widgets.Remote)

	return &fixture{
		cfg:  cfg,
		logs: logs,
		deps: Deps{
			Config: cfg,
			Logger: logger,
			Pages: &page.Builder{
				Assets:       assets.NewStore(cfg.ManifestPath(), cfg.Assets.Prefix, logger),
				Widgets:      widgets,
				LatencyScale: 0.001,
			},
			Shell:    shell.NewCache(shell.Options{Year: 2024}),
			Assets:   assets.NewDirOrigin(cfg.ClientAssetsDir()),
			Widgets:  widgets,
			Metrics:  telemetry.NewMetrics(telemetry.WithRegistry(reg)),
			Gatherer: reg,
		},
	}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	New(f.deps).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServer_StreamsHomePage(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	w := f.get(t, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if got := strings.Count(body, "<template data-section="); got != 3 {
		t.Errorf("fragments = %d, want 3", got)
	}
	if strings.Count(body, render.DocumentClose) != 1 {
		t.Error("document must close exactly once")
	}
	if !strings.Contains(body, assets.DevEntry) {
		t.Error("dev entry script missing without a manifest")
	}
	if !strings.Contains(body, activation.ClientPath) {
		t.Error("activation runtime not referenced")
	}
	if !strings.Contains(f.logs.String(), `"session":`) {
		t.Errorf("request log lacks the session id: %s", f.logs.String())
	}
}

func TestServer_HeadIsServed(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	handler := New(f.deps)

	for _, path := range []string{"/", "/products", "/shell.html"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodHead, path, nil))

		if w.Code != http.StatusOK {
			t.Errorf("HEAD %s status = %d, want 200", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("HEAD %s Content-Type = %q", path, ct)
		}
	}
}

func TestServer_FailSections(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	f.deps.Pages.Fail = []string{page.SectionProducts}
	w := f.get(t, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, `<template data-section="products"`) {
		t.Error("failed section was streamed")
	}
	if got := strings.Count(body, "<template data-section="); got != 2 {
		t.Errorf("fragments = %d, want 2", got)
	}
}

func TestServer_BuildPanicServesShell(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	f.deps.Pages = nil
	w := f.get(t, "/")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	want, err := f.deps.Shell.Get()
	if err != nil {
		t.Fatal(err)
	}
	if w.Body.String() != want {
		t.Error("500 body is not the static shell")
	}
}

func TestServer_ShellHTML(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)

	w := f.get(t, "/shell.html")
	want, _ := f.deps.Shell.Get()
	if w.Code != http.StatusOK || w.Body.String() != want {
		t.Fatalf("cached shell: status=%d", w.Code)
	}

	if err := shell.WriteFile(f.cfg.ShellPath(), "<html>generated</html>"); err != nil {
		t.Fatal(err)
	}
	if w := f.get(t, "/shell.html"); w.Body.String() != "<html>generated</html>" {
		t.Errorf("generated shell not preferred: %q", w.Body.String())
	}
}

func TestServer_AssetCacheHeaders(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{config.EnvProduction, CacheImmutable},
		{config.EnvDevelopment, CacheNone},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			f := newFixture(t, tt.env)
			w := f.get(t, "/assets/app-1a2b3c4d.js")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := w.Header().Get("Cache-Control"); got != tt.want {
				t.Errorf("Cache-Control = %q, want %q", got, tt.want)
			}
			if w.Body.String() != "console.log(1)" {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestServer_AssetNotFound(t *testing.T) {
	f := newFixture(t, config.EnvProduction)
	for _, path := range []string{"/assets/missing.js", "/assets/../config.yaml", "/assets/%2e%2e/secret"} {
		if w := f.get(t, path); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestServer_ClientAndWidgets(t *testing.T) {
	f := newFixture(t, config.EnvProduction)

	w := f.get(t, activation.ClientPath)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "javascript") {
		t.Errorf("client.js: status=%d type=%q", w.Code, w.Header().Get("Content-Type"))
	}

	w = f.get(t, activation.WidgetsPath)
	var got struct {
		Widgets []federation.Descriptor `json:"widgets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("widgets.json: %v", err)
	}
	if len(got.Widgets) != 3 {
		t.Errorf("widgets = %v, want three", got.Widgets)
	}
}

func TestServer_ReloadOnlyInDevelopment(t *testing.T) {
	f := newFixture(t, config.EnvProduction)
	if w := f.get(t, activation.ReloadPath); w.Code != http.StatusNotFound {
		t.Errorf("reload without a reload server = %d, want 404", w.Code)
	}

	f = newFixture(t, config.EnvDevelopment)
	f.deps.Reload = dev.NewReloadServer(nil)
	// A plain GET is not a websocket handshake; the upgrader rejects it.
	if w := f.get(t, activation.ReloadPath); w.Code != http.StatusBadRequest {
		t.Errorf("reload without upgrade = %d, want 400", w.Code)
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	h := New(f.deps)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("healthz = %q", body)
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		"streamssr_sections_total",
		"streamssr_shell_latency_seconds",
		`streamssr_http_requests_total{route="/healthz",status="200"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

// The streamed response must reach the client incrementally: the shell
// arrives before the slowest section resolves.
func TestServer_ShellArrivesFirst(t *testing.T) {
	f := newFixture(t, config.EnvDevelopment)
	f.deps.Pages.LatencyScale = 0.05
	srv := httptest.NewServer(New(f.deps))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 64*1024)
	var first bytes.Buffer
	for !strings.Contains(first.String(), `id="root"`) {
		n, err := resp.Body.Read(buf)
		first.Write(buf[:n])
		if err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if strings.Contains(first.String(), "<template") {
		// Sections take at least 15ms at this scale; the shell is flushed
		// before any of them.
		t.Error("first chunk already carried section content")
	}
	rest, _ := io.ReadAll(resp.Body)
	if !strings.HasSuffix(string(rest), render.DocumentClose) {
		t.Error("stream did not end with the document close")
	}
}
