package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/messaging"
	"github.com/AchilleasB/blood-portal/matching-service/internal/adapters/outbox"
	"github.com/AchilleasB/blood-portal/matching-service/internal/config"
)

func main() {
	cfg := config.LoadRelayConfig()
	logger := config.NewLogger(cfg.LogLevel).With("component", "outbox-relay")
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.DonationQueueName)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer broker.Close()
	logger.Info("connected to rabbitmq", "queue", cfg.DonationQueueName)

	relay := outbox.NewRelay(db, cfg.DatabaseURL, broker, logger)

	healthServer := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthMux(relay, broker),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", "addr", cfg.HealthAddr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("relay stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

type probe interface {
	IsHealthy() bool
	IsReady() bool
}

func healthMux(relay probe, broker interface{ IsOpen() bool }) *http.ServeMux {
	write := func(w http.ResponseWriter, ok bool) {
		status, httpStatus := "UP", http.StatusOK
		if !ok {
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": "outbox-relay",
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		write(w, relay.IsHealthy())
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		write(w, relay.IsReady() && broker.IsOpen())
	})
	return mux
}
