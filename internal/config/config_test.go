package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 5*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, cfg.MySQLDSN, cfg.DSN())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "host=db")
	t.Setenv("APP_ENV", "production")
	t.Setenv("BASE_URL", "https://eventease.example/")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("OUTBOX_BATCH_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "host=db", cfg.DSN())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://eventease.example", cfg.BaseURL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
	assert.Equal(t, 100, cfg.Notify.BatchSize)
}
