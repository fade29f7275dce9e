package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/loginwatch/loginwatch/internal/auth"
	"github.com/loginwatch/loginwatch/internal/background"
	"github.com/loginwatch/loginwatch/internal/config"
	"github.com/loginwatch/loginwatch/internal/database"
	"github.com/loginwatch/loginwatch/internal/geo"
	"github.com/loginwatch/loginwatch/internal/handlers"
	"github.com/loginwatch/loginwatch/internal/metrics"
	middlewareCustom "github.com/loginwatch/loginwatch/internal/middleware"
	"github.com/loginwatch/loginwatch/internal/repositories"
	"github.com/loginwatch/loginwatch/internal/risk"
	"github.com/loginwatch/loginwatch/internal/routes"
	"github.com/loginwatch/loginwatch/internal/services"
	pkghttp "github.com/loginwatch/loginwatch/pkg/http"
	pkglogger "github.com/loginwatch/loginwatch/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	attemptRepo := repositories.NewLoginAttemptRepository(db)
	deviceRepo := repositories.NewUserDeviceRepository(db)
	thresholdRepo := repositories.NewThresholdRepository(db)

	// Metrics and audit logging
	m := metrics.NewDefault()
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Token manager for service and admin callers
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Geolocation resolver with in-memory TTL cache
	geoProvider := geo.NewHTTPProvider(cfg.Geo.ProviderURL, cfg.Geo.LookupTimeout)
	resolver := geo.NewResolver(geoProvider, cfg.Geo.LookupTimeout, cfg.Geo.CacheTTL, cfg.Geo.CacheSize, logger)

	// Risk scorer
	scorer := risk.NewScorer(cfg.Risk.TrustDampening)

	// Threshold cache, loaded before the first request
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	thresholdService := services.NewThresholdService(loadCtx, thresholdRepo, logger, auditLogger)
	loadCancel()

	trustService := services.NewDeviceTrustService(deviceRepo, logger, auditLogger)

	// Background retry loop for failed aggregate upserts
	retryWorker := background.NewRetryWorker(deviceRepo, logger, m, cfg.Risk.RetryInterval, cfg.Risk.UpsertRetries)

	// Critical-risk email alerts, enabled only when addresses are configured
	var alerter services.Alerter
	if cfg.Alert.Enabled {
		alertService, err := services.NewAlertService(cfg.Alert.AWSRegion, cfg.Alert.FromAddress, cfg.Alert.ToAddress, logger)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		alerter = alertService
	}

	recorderService := services.NewRecorderService(
		attemptRepo,
		deviceRepo,
		trustService,
		resolver,
		scorer,
		thresholdService,
		retryWorker,
		alerter,
		logger,
		auditLogger,
		m,
	)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	recordHandler := handlers.NewRecordHandler(recorderService, ipConfig)
	attemptHandler := handlers.NewAttemptHandler(attemptRepo)
	deviceHandler := handlers.NewDeviceHandler(trustService)
	thresholdHandler := handlers.NewThresholdHandler(thresholdService)

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, recordHandler, attemptHandler, deviceHandler, thresholdHandler, tokenManager)

	// Prometheus scrape endpoint
	router.Handle("/metrics", promhttp.Handler())

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start retry worker
	retryCtx, retryCancel := context.WithCancel(context.Background())
	defer retryCancel()

	go retryWorker.Start(retryCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	retryCancel()
	retryWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
