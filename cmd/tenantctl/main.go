package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/opsdeck/tenantctl/internal/adapter/cache"
	"github.com/opsdeck/tenantctl/internal/adapter/fsm"
	"github.com/opsdeck/tenantctl/internal/adapter/otel"
	"github.com/opsdeck/tenantctl/internal/adapter/platform"
	"github.com/opsdeck/tenantctl/internal/adapter/river"
	"github.com/opsdeck/tenantctl/internal/adapter/sqlite"
	"github.com/opsdeck/tenantctl/internal/app"
	"github.com/opsdeck/tenantctl/internal/config"
	"github.com/opsdeck/tenantctl/internal/domain"

	handler "github.com/opsdeck/tenantctl/internal/adapter/http"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("tenantctl")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx := context.Background()

	// --- Telemetry ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("telemetry shutdown")
		}
	}()

	// --- Audit trail (local SQLite + River queue) ---
	db, err := otel.OpenDB(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("opening audit database: %w", err)
	}
	defer db.Close()

	auditStore, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("preparing audit store: %w", err)
	}

	riverClient, err := river.Setup(ctx, db, auditStore)
	if err != nil {
		return fmt.Errorf("job queue setup: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting job queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			log.Error().Err(err).Msg("stopping job queue")
		}
	}()

	// --- Adapters (out): platform API clients ---
	var directory domain.TenantDirectory = platform.NewTenants(cfg.PlatformAPIURL)
	var registry domain.ModuleRegistry = platform.NewModules(cfg.PlatformAPIURL)
	subscriptions := platform.NewSubscriptions(cfg.PlatformAPIURL)
	billing := platform.NewBilling(cfg.PlatformAPIURL)
	auth := platform.NewAuth(cfg.PlatformAPIURL)

	if cfg.RedisAddr != "" {
		cached := cache.NewModuleRegistry(registry, cfg.RedisAddr)
		defer cached.Close()
		registry = cached
		log.Info().Str("addr", cfg.RedisAddr).Msg("module catalog cache enabled")
	}

	directory = otel.NewTracingDirectory(directory)
	var publisher domain.EventPublisher = otel.NewTracingPublisher(river.NewPublisher(riverClient))

	// --- Application ---
	inflight := app.NewSequencer()
	validator := fsm.New()
	lifecycle := app.NewLifecycleService(cfg.BaseFrontendURL, directory, subscriptions, validator, publisher, inflight)
	entitlement := app.NewEntitlementService(registry, directory, publisher, inflight)
	catalog := app.NewDirectoryService(directory, billing)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(otelchi.Middleware("tenantctl", otelchi.WithChiRoutes(router)))
	router.Use(handler.SessionMiddleware(auth))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	api := humachi.New(router, huma.DefaultConfig("tenantctl", "0.1.0"))
	handler.NewHandler(lifecycle, entitlement, catalog, auth, auditStore).Register(api)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("tenantctl listening")
		log.Info().Msgf("API docs: http://localhost:%s/docs", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	log.Info().Msg("stopped")
	return nil
}
