package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	ServerAddr string
	ServerPort string

	// Service identification
	ServiceName    string
	ServiceVersion string

	// Inventory thresholds
	LowStockThreshold int
	MaxReservationQty int

	// Reservation lifecycle
	ReservationTTL      time.Duration
	ExpirySweepInterval time.Duration

	// OpenTelemetry
	OtelEndpoint string
	OtelInsecure bool

	// Upstream services
	ProductCatalogAddr string

	// Kafka event stream (disabled when no brokers configured)
	KafkaBrokers     []string
	KafkaEventsTopic string

	// Redis snapshot cache (disabled when no addresses configured)
	RedisAddrs     []string
	RedisPassword  string
	RedisTTL       time.Duration
	RedisKeyPrefix string
}

// LoadConfig loads configuration from environment variables. A local
// .env file is honored when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		ServiceName:    getEnv("OTEL_SERVICE_NAME", "inventory"),
		ServiceVersion: "0.1.0",

		LowStockThreshold: getEnvAsInt("LOW_STOCK_THRESHOLD", 10),
		MaxReservationQty: getEnvAsInt("MAX_RESERVATION_QTY", 50),

		ReservationTTL:      getEnvAsSeconds("RESERVATION_TTL_SECONDS", 900),
		ExpirySweepInterval: getEnvAsSeconds("EXPIRY_SWEEP_INTERVAL_SECONDS", 30),

		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317"),
		OtelInsecure: getEnvAsBool("OTEL_INSECURE", true),

		ProductCatalogAddr: getEnv("PRODUCT_CATALOG_SERVICE_ADDR", "product-catalog:8080"),

		KafkaBrokers:     getEnvAsStringSlice("KAFKA_BROKERS", nil),
		KafkaEventsTopic: getEnv("KAFKA_EVENTS_TOPIC", "inventory.stock-events"),

		RedisAddrs:     getEnvAsStringSlice("REDIS_ADDRS", nil),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTTL:       getEnvAsSeconds("REDIS_TTL_SEC", 300),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "inv:"),
	}
}

// EventsEnabled reports whether the Kafka event stream is configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// CacheEnabled reports whether the Redis snapshot cache is configured.
func (c *Config) CacheEnabled() bool {
	return len(c.RedisAddrs) > 0
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Second
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	values := strings.FieldsFunc(valueStr, func(c rune) bool {
		return c == ',' || c == ';'
	})
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values
}
