package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oshokin/soccer-timer/internal/api/grpc/timer"
	"github.com/oshokin/soccer-timer/internal/config"
	"github.com/oshokin/soccer-timer/internal/logger"
	"github.com/oshokin/soccer-timer/internal/metrics"
	"github.com/oshokin/soccer-timer/internal/service/coordinator"
	"github.com/oshokin/soccer-timer/internal/service/haptics"
	"github.com/oshokin/soccer-timer/internal/service/lifecycle"
	"github.com/oshokin/soccer-timer/internal/service/notification"
)

// Options controls the daemon process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the configured bridge address.
	ListenAddress string
	// MetricsAddress overrides the configured metrics address.
	MetricsAddress string
	// Vibrator overrides the configured vibrator kind.
	Vibrator string
	// LockFile overrides the configured foreground lock file.
	LockFile string
	// Ready, when set, receives the bound bridge address once serving.
	Ready chan<- string
}

// shutdownTimeout bounds the HTTP server drain.
const shutdownTimeout = 5 * time.Second

// Run loads settings, starts the bridge and blocks until ctx is canceled.
// On return the live coordinator process, if any, has been torn down.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "match-clock")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	settings.ApplyLogLevel()
	applyOverrides(settings, opts)

	app, err := build(ctx, settings)
	if err != nil {
		return err
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", settings.BridgeAddress)
	if err != nil {
		app.host.Close()

		return fmt.Errorf("listen on %s: %w", settings.BridgeAddress, err)
	}

	var metricsServer *http.Server
	if settings.MetricsAddress != "" {
		metricsServer = &http.Server{
			Addr:              settings.MetricsAddress,
			Handler:           NewRouter(app.registry, app.host),
			ReadHeaderTimeout: settings.Timeout,
		}

		go func() {
			logger.InfoKV(ctx, "Metrics listening", "address", settings.MetricsAddress)

			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorKV(ctx, "Metrics server failed", "error", err)
			}
		}()
	}

	logger.InfoKV(ctx, "Bridge listening",
		"address", lis.Addr().String(),
		"lock_file", settings.LockFile,
		"vibrator", settings.Vibrator,
	)

	if opts.Ready != nil {
		opts.Ready <- lis.Addr().String()
	}

	// Closed once GracefulStop returns so Run blocks until the server is down.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down bridge")

		app.health.Shutdown()
		app.grpcServer.GracefulStop()

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.WarnKV(ctx, "Metrics server shutdown failed", "error", err)
			}
		}

		app.host.Close()
		close(done)
	}()

	if err := app.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Bridge stopped")

	return nil
}

// app groups the wired components of a daemon instance.
type app struct {
	tray       *notification.Tray
	host       *coordinator.Host
	registry   *prometheus.Registry
	grpcServer *grpc.Server
	health     *health.Server
}

// build wires every collaborator of the coordinator and the bridge server.
func build(ctx context.Context, settings *config.Config) (*app, error) {
	vibrator, err := haptics.New(settings.Vibrator, settings.VibrateCommand, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("vibrator: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tray := notification.NewTray()

	lockPath := settings.LockFile
	if lockPath == config.LockDisabled {
		lockPath = ""
	}

	host := coordinator.NewHost(ctx, coordinator.Dependencies{
		Presenter: notification.NewPresenter(tray),
		Lifecycle: lifecycle.NewManager(tray, lockPath),
		Vibrator:  vibrator,
		Metrics:   metrics.NewCoordinator(registry),
	})

	// Notification actions loop back into the dispatcher.
	tray.SetActionHandler(func(ctx context.Context, command string) error {
		return host.DoNamed(ctx, command, nil)
	})

	grpcServer := grpc.NewServer(
		timer.UnknownMethodHandler(),
		grpc.UnaryInterceptor(timer.LoggingInterceptor()),
	)
	timer.NewServer(host, tray).Register(grpcServer)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(timer.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &app{
		tray:       tray,
		host:       host,
		registry:   registry,
		grpcServer: grpcServer,
		health:     healthServer,
	}, nil
}

// applyOverrides lets command line flags win over file and environment.
func applyOverrides(settings *config.Config, opts *Options) {
	if opts.ListenAddress != "" {
		settings.BridgeAddress = opts.ListenAddress
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if opts.Vibrator != "" {
		settings.Vibrator = opts.Vibrator
	}

	if opts.LockFile != "" {
		settings.LockFile = opts.LockFile
	}
}
