package sessionserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	api "github.com/oshokin/soccer-timer/internal/api/http/session"
	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/metrics"
	repository "github.com/oshokin/soccer-timer/internal/repository/session"
)

// Options controls the session server process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the configured session address.
	ListenAddress string
	// SessionDir overrides the configured storage directory.
	SessionDir string
	// Ready, when set, receives the bound address once serving.
	Ready chan<- string
}

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 5 * time.Second

// Run serves the session endpoint until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "session-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	settings.ApplyLogLevel()

	if opts.ListenAddress != "" {
		settings.SessionAddress = opts.ListenAddress
	}

	if opts.SessionDir != "" {
		settings.SessionDir = opts.SessionDir
	}

	if err = os.MkdirAll(settings.SessionDir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	registry := prometheus.NewRegistry()
	handler := NewRouter(settings, registry)

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.SessionAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.SessionAddress, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: settings.Timeout,
		ReadTimeout:       settings.Timeout,
		WriteTimeout:      settings.Timeout,
	}

	logger.InfoKV(ctx, "Session endpoint listening",
		"address", lis.Addr().String(),
		"session_dir", settings.SessionDir,
		"max_age", settings.SessionMaxAge,
	)

	if opts.Ready != nil {
		opts.Ready <- lis.Addr().String()
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		<-ctx.Done()
		logger.Info(ctx, "Shutting down session endpoint")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WarnKV(ctx, "Session endpoint shutdown failed", "error", err)
		}
	}()

	if err = server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve HTTP: %w", err)
	}

	<-done
	logger.Info(ctx, "Session endpoint stopped")

	return nil
}

// NewRouter mounts the session endpoint at the root and metrics at /metrics.
func NewRouter(settings *config.Config, registry *prometheus.Registry) http.Handler {
	handler := api.NewHandler(
		repository.NewFileRepository(settings.SessionDir),
		settings.SessionMaxAge,
		metrics.NewSession(registry),
	)

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Mount("/", handler.Router())

	return r
}
