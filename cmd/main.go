package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/okian/sugarsignal/internal/adapters/http/api"
	"github.com/okian/sugarsignal/internal/adapters/http/site"
	"github.com/okian/sugarsignal/internal/adapters/http/swagger"
	app "github.com/okian/sugarsignal/internal/app"
	"github.com/okian/sugarsignal/internal/config"
	"github.com/okian/sugarsignal/pkg/logger"
	"github.com/okian/sugarsignal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	modelLoadTimeout          = 2 * time.Minute
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
	logMaxAgeDays             = 28
)

func main() {
	os.Exit(run())
}

func run() int {
	// We collect our own system metrics on the custom registry
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> dotenv -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if cfg.LogFile != "" || cfg.LogJSON {
		if err := logger.InitWithOptions(
			logger.WithFile(cfg.LogFile),
			logger.WithRotation(cfg.LogMaxSizeMB, cfg.LogMaxBackups, logMaxAgeDays),
			logger.WithJSON(cfg.LogJSON),
		); err != nil {
			os.Stderr.WriteString("failed to initialize log file: " + err.Error() + "\n")
			return 1
		}
	}
	log := logger.Named("sugarsignal")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Metric names must be settled before the model load records anything.
	if err := configureMetrics(cfg); err != nil {
		log.Error(ctx, "invalid metrics settings", logger.Error(err))
		return 1
	}

	// The model is loaded before the listener starts; failure is fatal.
	svc, err := newService(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to load model", logger.String("model_path", cfg.ModelPath), logger.Error(err))
		return 1
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("mount_path", cfg.MountPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or a listener failure
	code := 0
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		code = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return code
}

// newService opens the artifact source and loads the model.
// configureMetrics rebuilds the metrics registry with the configured names.
func configureMetrics(cfg *config.Config) error {
	return metrics.Configure(
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithSubsystem(cfg.Metrics.Subsystem),
		metrics.WithHistogramBuckets(cfg.Metrics.LatencyBuckets),
		metrics.WithConstLabels(cfg.Metrics.ConstLabels),
	)
}

func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	loadCtx, cancel := context.WithTimeout(ctx, modelLoadTimeout)
	defer cancel()

	src, err := artifact.Open(loadCtx, cfg.ModelPath, artifact.WithS3Config(artifact.S3Config{
		Region:    cfg.S3.Region,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	}))
	if err != nil {
		return nil, err
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithSource(src),
		app.WithChecksum(cfg.ModelChecksum),
		app.WithCacheSize(cfg.CacheSize),
	)
	if err := svc.Start(loadCtx); err != nil {
		return nil, err
	}
	return svc, nil
}

// newHandler registers every route and wraps the mux with request ids.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux, swagger.WithPredictPath(cfg.MountPath))
	if err := site.Register(ctx, mux, cfg.MountPath); err != nil {
		log.Warn(ctx, "form page disabled", logger.Error(err))
	}

	apiServer := api.NewServer(svc,
		api.WithMountPath(cfg.MountPath),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	return api.RequestID(mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	metrics.UpdateCacheEntries(stats.CacheEntries)
}
