package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all configuration for the service.
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Local queue storage
	LocalStorePath string

	// Public base URL for uploaded evidence blobs
	BlobBaseURL string

	// Reachability probe
	ProbeURL      string
	ProbeInterval time.Duration

	// Sync driver
	SyncItemTimeout time.Duration

	// RabbitMQ analysis pipeline (optional; empty URL disables it)
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// SendGrid agency forwarding (optional; empty key disables it)
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string
	AgencyRecipients  []string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "reportaqui"),

		Port: getEnv("PORT", "8080"),

		LocalStorePath: getEnv("LOCAL_STORE_PATH", "reportaqui-queue.db"),

		BlobBaseURL: getEnv("BLOB_BASE_URL", "https://reportaqui.example.org/evidence"),

		ProbeURL:      getEnv("PROBE_URL", "https://reportaqui.example.org/health"),
		ProbeInterval: getDurationEnv("PROBE_INTERVAL", 15*time.Second),

		SyncItemTimeout: getDurationEnv("SYNC_ITEM_TIMEOUT", 30*time.Second),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "reportaqui"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "report.synced"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Reporta Aqui"),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@reportaqui.example.org"),
		AgencyRecipients:  getListEnv("AGENCY_RECIPIENTS"),
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default
// value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv parses a comma-separated environment variable.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
