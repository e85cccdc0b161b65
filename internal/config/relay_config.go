package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// RelayConfig holds configuration for the outbox relay service.
// This is a minimal config that only includes what the relay needs.
type RelayConfig struct {
	DatabaseURL       string
	RabbitMQURL       string
	DonationQueueName string
	HealthAddr        string
	LogLevel          slog.Level
}

func LoadRelayConfig() *RelayConfig {
	_ = godotenv.Load()

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:       dbURL,
		RabbitMQURL:       rabbitURL,
		DonationQueueName: getenv("DONATION_QUEUE_NAME", "donations"),
		HealthAddr:        getenv("RELAY_HEALTH_ADDR", ":8090"),
		LogLevel:          parseLevel(getenv("LOG_LEVEL", "info")),
	}
}
