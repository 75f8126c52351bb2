package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Blank out the keys asserted below so host environments cannot
	// leak into the defaults.
	for _, key := range []string{
		"SERVER_ADDR", "SERVER_PORT",
		"LOW_STOCK_THRESHOLD", "MAX_RESERVATION_QTY",
		"RESERVATION_TTL_SECONDS", "EXPIRY_SWEEP_INTERVAL_SECONDS",
		"KAFKA_BROKERS", "REDIS_ADDRS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "0.0.0.0", cfg.ServerAddr)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, 50, cfg.MaxReservationQty)
	assert.Equal(t, 15*time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 30*time.Second, cfg.ExpirySweepInterval)
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RESERVATION_TTL_SECONDS", "60")
	t.Setenv("EXPIRY_SWEEP_INTERVAL_SECONDS", "5")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("REDIS_ADDRS", "redis-1:6379;redis-2:6379")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, time.Minute, cfg.ReservationTTL)
	assert.Equal(t, 5*time.Second, cfg.ExpirySweepInterval)
	assert.Equal(t, 3, cfg.LowStockThreshold)

	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)

	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, []string{"redis-1:6379", "redis-2:6379"}, cfg.RedisAddrs)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("MAX_RESERVATION_QTY", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, 50, cfg.MaxReservationQty)
}
