package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"freightpulse/internal/config"
	apierrors "freightpulse/internal/errors"
	"freightpulse/internal/exporter"
	"freightpulse/internal/infrastructure"
	customMiddleware "freightpulse/internal/middleware"
	"freightpulse/internal/services"
	"freightpulse/internal/tms"
	handlers "freightpulse/internal/transport/http"
)

// Version is the application version, overridable at build time.
var Version = "v1.0.0"

// Application is the dependency container for the dashboard server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Router    *chi.Mux
	Server    *http.Server
	Dashboard *services.DashboardService
	Health    *services.HealthService

	shutdownTracing func(context.Context) error
}

// New builds the application: config, logger, tracing, TMS client,
// services, and the HTTP router.
func New(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.InitLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("application starting",
		slog.String("service", "freightpulse"),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	shutdownTracing, err := infrastructure.InitTracing(context.Background(), logger)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	creds, err := config.LoadCredentials(cfg.TMS.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !creds.IsConfigured() {
		logger.Warn("no TMS access token configured",
			slog.String("credentials_file", cfg.TMS.CredentialsFile),
			slog.String("env_var", config.EnvAccessToken))
	}

	client := tms.NewClient(cfg.TMS, creds, logger,
		tms.WithPersist(func(c config.Credentials) {
			config.SaveCredentials(cfg.TMS.CredentialsFile, c, logger)
		}))

	dashboard := services.NewDashboardService(client, logger)
	health := services.NewHealthService(Version, dashboard, logger)

	a := &Application{
		Config:          cfg,
		Logger:          logger,
		Dashboard:       dashboard,
		Health:          health,
		shutdownTracing: shutdownTracing,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.Compress(5))
	r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{}))

	if a.Config.Server.RateLimitRPS > 0 {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimitRPS,
			a.Config.Server.RateLimitBurst,
			a.Logger,
		).Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)
	reportWriter := exporter.NewReportWriter(a.Config.Export.ReportsDir, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", handlers.NewHealthHandler(a.Health, a.Logger).Routes())
		r.Mount("/data", handlers.NewDataHandler(a.Dashboard, a.Logger, errorHandler).Routes())
		r.Mount("/ops", handlers.NewOpsHandler(a.Dashboard, reportWriter, a.Logger, errorHandler).Routes())
	})

	// Prometheus scrape endpoint, outside the /api group.
	r.Handle("/metrics", promhttp.Handler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server until ctx is cancelled, then drains it
// within the configured shutdown timeout. The initial snapshot is
// loaded in the background so a slow TMS never blocks startup.
func (a *Application) Start(ctx context.Context) error {
	go func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := a.Dashboard.Refresh(refreshCtx); err != nil {
			a.Logger.Error("initial snapshot refresh failed",
				slog.String("error", err.Error()))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	return a.Stop()
}

// Stop drains in-flight requests and flushes telemetry.
func (a *Application) Stop() error {
	a.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(shutdownCtx); err != nil {
			a.Logger.Warn("tracing shutdown failed", slog.String("error", err.Error()))
		}
	}

	a.Logger.Info("server stopped")
	return nil
}
