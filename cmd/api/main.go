package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/handler"
	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/metrics"
	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/middleware"
	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/repository"
	"github.com/AchilleasB/blood-portal/matching-service/internal/config"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/services"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.RunMigrations {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := repository.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		logger.Info("database schema applied")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Readiness reports Redis as down until it comes back.
		logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddress, "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.New(reg)

	store := repository.NewSQLRepository(db, cfg.StoreTimeout)

	matcher := services.NewMatcher(store, portalMetrics)
	notifier := services.NewNotifier(store)
	dashboards := services.NewDashboardService(store, store, matcher, notifier, portalMetrics, logger)
	lifecycle := services.NewLifecycleManager(store, store, portalMetrics, logger)
	profiles := services.NewProfileService(store, store)
	inbox := services.NewInboxService(store)
	admin := services.NewAdminService(store)

	router := handler.NewRouter(handler.RouterDeps{
		Auth:           middleware.NewAuthMiddleware(cfg.JWTPublicKey, redisClient, logger),
		Donor:          handler.NewDonorHandler(dashboards, lifecycle, profiles, logger),
		Patient:        handler.NewPatientHandler(dashboards, profiles, logger),
		Notifications:  handler.NewNotificationHandler(inbox, logger),
		Admin:          handler.NewAdminHandler(admin, logger),
		Health:         handler.NewHealthHandler(db, redisClient, store),
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down server", "error", err)
	}
	logger.Info("shutdown complete")
}
