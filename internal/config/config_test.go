package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/streamssr/streamssr/internal/errors"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.Production() {
		t.Error("default config should be development")
	}
	if cfg.ShellTimeout() != DefaultShellTimeout {
		t.Errorf("ShellTimeout() = %v, want %v", cfg.ShellTimeout(), DefaultShellTimeout)
	}
	if cfg.Assets.Prefix != DefaultAssetsPrefix {
		t.Errorf("Assets.Prefix = %q, want %q", cfg.Assets.Prefix, DefaultAssetsPrefix)
	}
}

func TestLoadEnvDefaults(t *testing.T) {
	cfg, err := LoadEnv(envMap(nil))
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Addr() = %q, want :3000", cfg.Addr())
	}
	if cfg.ManifestPath() != filepath.Join("dist", "client", ".vite", "manifest.json") {
		t.Errorf("ManifestPath() = %q", cfg.ManifestPath())
	}
	if cfg.ShellPath() != filepath.Join("dist", "static", "shell.html") {
		t.Errorf("ShellPath() = %q", cfg.ShellPath())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := LoadEnv(envMap(map[string]string{
		"PORT":                      "8080",
		"NODE_ENV":                  "production",
		"STREAMSSR_SHELL_TIMEOUT":   "250ms",
		"STREAMSSR_SECTION_TIMEOUT": "2s",
		"STREAMSSR_ASSETS_BUCKET":   "bucket",
		"STREAMSSR_FAIL_SECTIONS":   "reviews, stats,,",
	}))
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if !cfg.Production() {
		t.Error("NODE_ENV=production should enable production mode")
	}
	if cfg.ShellTimeout() != 250*time.Millisecond {
		t.Errorf("ShellTimeout() = %v", cfg.ShellTimeout())
	}
	if cfg.SectionTimeout() != 2*time.Second {
		t.Errorf("SectionTimeout() = %v", cfg.SectionTimeout())
	}
	if cfg.Assets.Bucket != "bucket" {
		t.Errorf("Assets.Bucket = %q", cfg.Assets.Bucket)
	}
	if len(cfg.Debug.FailSections) != 2 || cfg.Debug.FailSections[0] != "reviews" || cfg.Debug.FailSections[1] != "stats" {
		t.Errorf("FailSections = %#v", cfg.Debug.FailSections)
	}
}

func TestEnvWinsOverNodeEnv(t *testing.T) {
	cfg, err := LoadEnv(envMap(map[string]string{
		"ENV":      "development",
		"NODE_ENV": "production",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Production() {
		t.Error("ENV should take precedence over NODE_ENV")
	}
}

func TestLoadEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric port", map[string]string{"PORT": "abc"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"bad duration", map[string]string{"STREAMSSR_SHELL_TIMEOUT": "soon"}},
		{"negative shell timeout", map[string]string{"STREAMSSR_SHELL_TIMEOUT": "-1s"}},
		{"zero section timeout", map[string]string{"STREAMSSR_SECTION_TIMEOUT": "0s"}},
		{"unknown tracer", map[string]string{"STREAMSSR_TRACE": "jaeger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadEnv(envMap(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.Code(err); code != "E121" {
				t.Errorf("error code = %q, want E121 (err: %v)", code, err)
			}
		})
	}
}

func TestSectionTimeoutCanBeDisabled(t *testing.T) {
	cfg, err := LoadEnv(envMap(map[string]string{"STREAMSSR_SECTION_TIMEOUT": "-1s"}))
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := cfg.SectionTimeout(); got >= 0 {
		t.Errorf("SectionTimeout() = %v, want negative", got)
	}
	if got := New().SectionTimeout(); got != DefaultSectionTimeout {
		t.Errorf("default SectionTimeout() = %v, want %v", got, DefaultSectionTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streamssr.yaml")
	content := `
port: 4000
env: production
distDir: build
stream:
  shellTimeout: 5s
widgets:
  remote: https://widgets.example.com/remoteEntry.js
assets:
  prefix: /static
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEnv(envMap(map[string]string{
		EnvConfigFile: path,
		"PORT":        "4001",
	}))
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}

	if cfg.Port != 4001 {
		t.Errorf("env should override file: Port = %d", cfg.Port)
	}
	if !cfg.Production() {
		t.Error("env: production from file should apply")
	}
	if cfg.DistDir != "build" {
		t.Errorf("DistDir = %q", cfg.DistDir)
	}
	if cfg.ShellTimeout() != 5*time.Second {
		t.Errorf("ShellTimeout() = %v", cfg.ShellTimeout())
	}
	if cfg.SectionTimeout() != DefaultSectionTimeout {
		t.Errorf("SectionTimeout() should default, got %v", cfg.SectionTimeout())
	}
	if cfg.Widgets.Remote != "https://widgets.example.com/remoteEntry.js" {
		t.Errorf("Widgets.Remote = %q", cfg.Widgets.Remote)
	}
	if cfg.Assets.Prefix != "/static/" {
		t.Errorf("Assets.Prefix = %q, want trailing slash", cfg.Assets.Prefix)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	if errors.Code(err) != "E120" {
		t.Errorf("missing file: code = %q", errors.Code(err))
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("port: [nope"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFile(bad)
	if errors.Code(err) != "E120" {
		t.Errorf("bad yaml: code = %q", errors.Code(err))
	}
}
