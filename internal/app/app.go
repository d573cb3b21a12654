package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freightcli/internal/analytics"
	"freightcli/internal/config"
	apierrors "freightcli/internal/errors"
	"freightcli/internal/exporter"
	"freightcli/internal/infrastructure"
	"freightcli/internal/loader"
	customMiddleware "freightcli/internal/middleware"
	"freightcli/internal/pipeline"
	"freightcli/internal/services"
	transport "freightcli/internal/transport/http"
)

// VERSION is the application version, overridable at build time.
var VERSION = "dev"

// Application holds the assembled service and its HTTP server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router chi.Router
	Server *http.Server

	Engine           *analytics.Engine
	AnalyticsService *services.AnalyticsService
	HealthService    *services.HealthService
}

// NewApplication loads configuration and wires every component together.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the engine and service layer.
func (a *Application) initializeServices() {
	ld := loader.New(a.Config.Data.Dir, a.Logger)
	builder := pipeline.NewBuilder(a.Config.Heuristics, a.Logger)
	a.Engine = analytics.NewEngine(ld, builder, a.Config.Heuristics, a.Logger)

	exp := exporter.NewReportExporter(a.Config.Data.ReportsDir)
	a.AnalyticsService = services.NewAnalyticsService(a.Engine, exp, a.Logger)
	a.HealthService = services.NewHealthService(VERSION, a.Config.Data.Dir, a.Engine, a.Logger)
}

// setupRouter builds the middleware chain and mounts the API routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimitRPS > 0 {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	analyticsHandler := transport.NewAnalyticsHandler(a.AnalyticsService, a.Logger, errorHandler)
	healthHandler := transport.NewHealthHandler(a.HealthService, a.Logger, errorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/analytics", analyticsHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start loads the initial dataset and starts the HTTP server. A failed
// initial load is not fatal: the service starts unready and a later POST
// /api/analytics/reload can recover it.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", VERSION),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_dir", a.Config.Data.Dir))

	if err := a.AnalyticsService.Reload(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Initial dataset load failed, starting unready",
			slog.String("error", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
