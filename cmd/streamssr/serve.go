package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/streamssr/streamssr/internal/assets"
	"github.com/streamssr/streamssr/internal/config"
	"github.com/streamssr/streamssr/internal/dev"
	"github.com/streamssr/streamssr/internal/federation"
	"github.com/streamssr/streamssr/internal/page"
	"github.com/streamssr/streamssr/internal/server"
	"github.com/streamssr/streamssr/internal/shell"
	"github.com/streamssr/streamssr/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		port int
		dist string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the streaming server",
		Long: `Start the HTTP server.

Configuration comes from the optional YAML file named by STREAMSSR_CONFIG
and the environment (PORT, ENV, STREAMSSR_*). Flags override both.

Examples:
  streamssr serve
  ENV=production streamssr serve --port=8080
  STREAMSSR_FAIL_SECTIONS=reviews streamssr serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if dist != "" {
				cfg.DistDir = dist
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", cfg.Addr())
			if err != nil {
				return err
			}
			return serve(ctx, cfg, ln, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&dist, "dist", "", "Build output directory")
	return cmd
}

// newLogger returns a JSON logger in production and a text logger
// otherwise.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// serve runs the server on ln until ctx is done.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener, out io.Writer) error {
	logger := newLogger(cfg, os.Stderr)

	shutdownTracing, err := telemetry.SetupTracing(cfg.Telemetry.Trace, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("trace shutdown", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(
		telemetry.WithRegistry(reg),
		telemetry.WithNamespace(cfg.Telemetry.Namespace),
	)

	store := assets.NewStore(cfg.ManifestPath(), cfg.Assets.Prefix, logger)
	if m, err := store.Manifest(); err != nil {
		logger.Warn("client manifest unusable, using the dev entry", "error", err)
	} else if m == nil {
		logger.Info("no client manifest, using the dev entry", "path", cfg.ManifestPath())
	}

	var origin assets.Origin = assets.NewDirOrigin(cfg.ClientAssetsDir())
	if cfg.Assets.Bucket != "" {
		origin = assets.NewS3Origin(assets.NewS3Client(cfg.Assets.Region), cfg.Assets.Bucket, cfg.Assets.KeyPrefix)
		logger.Info("serving assets from S3", "bucket", cfg.Assets.Bucket, "prefix", cfg.Assets.KeyPrefix)
	}

	widgets := federation.Default(cfg.Widgets.Remote)

	var reload *dev.ReloadServer
	if !cfg.Production() {
		reload = dev.NewReloadServer(logger)
		defer reload.Close()

		watcher := dev.NewWatcher(dev.WatcherConfig{Paths: []string{cfg.DistDir}, Logger: logger})
		watcher.OnChange(dev.Reloader(store, reload))
		go func() {
			if err := watcher.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				logger.Warn("dist watcher stopped", "error", err)
			}
		}()
	}

	handler := server.New(server.Deps{
		Config: cfg,
		Logger: logger,
		Pages: &page.Builder{
			Assets:  store,
			Widgets: widgets,
			Fail:    cfg.Debug.FailSections,
			Reload:  reload != nil,
		},
		Shell:    shell.NewCache(shell.Options{}),
		Assets:   origin,
		Widgets:  widgets,
		Metrics:  metrics,
		Gatherer: reg,
		Reload:   reload,
		Tracer:   telemetry.Tracer(nil),
	})

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: responses stream for as long as sections take.
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	success(out, "Listening on http://localhost:%d", ln.Addr().(*net.TCPAddr).Port)
	info(out, "Mode: %s", cfg.Env)
	if len(cfg.Debug.FailSections) > 0 {
		warn(out, "Failing sections: %v", cfg.Debug.FailSections)
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
