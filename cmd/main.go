package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/formcheck/internal/adapters/coach"
	"github.com/okian/formcheck/internal/adapters/http/api"
	"github.com/okian/formcheck/internal/adapters/http/swagger"
	"github.com/okian/formcheck/internal/adapters/pose"
	app "github.com/okian/formcheck/internal/app"
	"github.com/okian/formcheck/internal/config"
	"github.com/okian/formcheck/internal/domain/skills"
	"github.com/okian/formcheck/pkg/logger"
	"github.com/okian/formcheck/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 90 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, closeDeps, err := buildService(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service", logger.Error(err))
		os.Exit(1)
	}
	defer closeDeps()

	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	svc.Stop(shutdownCtx)

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// buildService wires the catalog, pose client and elaborator from cfg. The
// returned func releases the elaborator's client.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	catalog := skills.Default()
	if cfg.CatalogPath != "" {
		c, err := skills.Load(ctx, cfg.CatalogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		catalog = c
	}

	extractor := pose.NewHTTPExtractor(cfg.PoseURL,
		pose.WithTimeout(time.Duration(cfg.PoseTimeoutMS)*time.Millisecond),
		pose.WithAttempts(cfg.PoseRetryAttempts),
		pose.WithLogger(log.Named("pose")),
	)

	elaborationTimeout := time.Duration(cfg.ElaborationTimeoutMS) * time.Millisecond
	var elaborator coach.Elaborator = coach.SummaryElaborator{}
	closeDeps := func() {}
	if cfg.GeminiAPIKey != "" {
		c, err := coach.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel,
			coach.WithTimeout(elaborationTimeout),
			coach.WithLogger(log.Named("coach")),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("create gemini client: %w", err)
		}
		elaborator = c
		closeDeps = func() { _ = c.Close() }
	} else {
		log.Warn(ctx, "no gemini api key configured; feedback will be the short summary only")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithCatalog(catalog),
		app.WithTolerance(cfg.DecayTolerance),
		app.WithExtractor(extractor),
		app.WithElaborator(elaborator),
		app.WithElaborationTimeout(elaborationTimeout),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithMaxStoredJobs(cfg.MaxStoredJobs),
	)
	return svc, closeDeps, nil
}

// newHandler registers the API and docs routes behind CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxUploadBytes).Register(ctx, mux)
	return api.CORS(mux, cfg.AllowedOrigins)
}

// startServiceMetricsUpdater periodically publishes service gauges.
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

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if storedJobs, ok := stats["storedJobs"].(int); ok {
		metrics.UpdateJobsStored(storedJobs)
	}
}
