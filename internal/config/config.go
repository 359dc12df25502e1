package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	Env         string
	BaseURL     string
	SwaggerHost string
	WebDir      string

	DBDriver    string
	MySQLDSN    string
	PostgresDSN string
	ResetDB     bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret  string
	IDTokenTTL time.Duration
	SessionTTL time.Duration

	AuthRateLimit  float64
	MetricsEnabled bool

	Notify NotifyConfig
}

// NotifyConfig selects and configures the notification transport.
type NotifyConfig struct {
	Transport      string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	KafkaBrokers   []string
	KafkaTopic     string
	BatchSize      int
	Interval       time.Duration
	MaxRetries     int
	BreakerTimeout time.Duration
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.MySQLDSN
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		WebDir:      os.Getenv("WEB_DIR"),

		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/eventease?charset=utf8mb4&parseTime=True&loc=Local"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=postgres password=postgres dbname=eventease port=5432 sslmode=disable"),
		ResetDB:     getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:  getEnv("JWT_SECRET", "change-me"),
		IDTokenTTL: getEnvDuration("ID_TOKEN_TTL", time.Hour),
		SessionTTL: getEnvDuration("SESSION_TTL", 5*24*time.Hour),

		AuthRateLimit:  getEnvFloat("AUTH_RATE_LIMIT", 5),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Notify: NotifyConfig{
			Transport:      getEnv("NOTIFY_TRANSPORT", "log"),
			SMTPHost:       getEnv("SMTP_HOST", "localhost"),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			SMTPFrom:       getEnv("SMTP_FROM", "EventEase <no-reply@eventease.local>"),
			KafkaBrokers:   getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			KafkaTopic:     getEnv("KAFKA_TOPIC", "eventease.notifications"),
			BatchSize:      getEnvInt("OUTBOX_BATCH_SIZE", 100),
			Interval:       getEnvDuration("OUTBOX_INTERVAL", time.Second),
			MaxRetries:     getEnvInt("OUTBOX_MAX_RETRIES", 10),
			BreakerTimeout: getEnvDuration("NOTIFY_BREAKER_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
