package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/streamssr/streamssr/internal/activation"
	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/config"
	"github.com/streamssr/streamssr/internal/dev"
	"github.com/streamssr/streamssr/internal/federation"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/shell"
	"github.com/streamssr/streamssr/internal/stream"
	"github.com/streamssr/streamssr/internal/telemetry"
)

// Deps are the collaborators of the HTTP server. Everything is injected;
// the package holds no globals.
type Deps struct {
	Config *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Pages builds the streamed documents.
	Pages *page.Builder

	// Shell serves /shell.html and the 500 fallback.
	Shell *shell.Cache

	// Assets serves the client build; nil disables /assets.
	Assets assets.Origin

	// Widgets is listed at /_streamssr/widgets.json.
	Widgets *federation.Registry

	// Metrics may be nil; Gatherer backs /metrics when set.
	Metrics  *telemetry.Metrics
	Gatherer prometheus.Gatherer

	// Reload enables the live reload socket when set.
	Reload *dev.ReloadServer

	// Tracer defaults to the global provider.
	Tracer trace.Tracer
}

// New returns the router.
func New(d Deps) http.Handler {
	cfg := d.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	responder := stream.New(stream.Options{
		Build: func(ctx context.Context, r *http.Request, id string) (*page.Page, error) {
			return d.Pages.Build(ctx, r.URL.Path, r.URL.RequestURI(), id)
		},
		Fallback: func() (string, error) {
			return d.Shell.Static(cfg.ShellPath())
		},
		ShellTimeout:   cfg.ShellTimeout(),
		SectionTimeout: cfg.SectionTimeout(),
		Logger:         logger,
		Metrics:        d.Metrics,
		Tracer:         d.Tracer,
	})

	r := chi.NewRouter()
	r.Use(RequestLogger(logger))
	r.Use(d.Metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/shell.html", func(w http.ResponseWriter, r *http.Request) {
		html, err := d.Shell.Static(cfg.ShellPath())
		if err != nil {
			logger.Error("static shell unavailable", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	})

	if d.Assets != nil {
		r.Get(cfg.Assets.Prefix+"*", AssetHandler(d.Assets, cfg.Production(), logger))
	}

	r.Method(http.MethodGet, activation.ClientPath, activation.ClientHandler(cfg.Production()))
	r.Get(activation.WidgetsPath, widgetsHandler(d.Widgets))
	if d.Reload != nil {
		r.Get(activation.ReloadPath, d.Reload.HandleWebSocket)
	}
	r.Get("/_streamssr/*", http.NotFound)

	r.Method(http.MethodGet, "/*", responder)
	return r
}

func widgetsHandler(reg *federation.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := []federation.Descriptor{}
		if reg != nil {
			list = reg.Descriptors()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		_ = json.NewEncoder(w).Encode(map[string]any{"widgets": list})
	}
}

// RequestLogger logs one line per request with the streaming session id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			}
			if id := ww.Header().Get(stream.SessionHeader); id != "" {
				attrs = append(attrs, "session", id)
			}
			logger.Log(r.Context(), level, "request", attrs...)
		})
	}
}
