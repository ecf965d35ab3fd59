package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Currency CurrencyConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig

	JWTSecret    string
	OTLPEndpoint string
}

type DatabaseConfig struct {
	Driver      string // sqlite|postgres
	Path        string
	PostgresDSN string
	ForeignKeys bool
}

type CurrencyConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Strict  bool
}

type RedisConfig struct {
	Addr    string
	RateTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type HTTPConfig struct {
	Addr            string
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string // text|json
}

const (
	defaultDriver          = "sqlite"
	defaultDBPath          = "bank_system.db"
	defaultCurrencyURL     = "https://api.freecurrencyapi.com"
	defaultCurrencyTimeout = 5 * time.Second
	defaultRateTTL         = time.Hour
	defaultKafkaTopic      = "transfers"
	defaultKafkaGroup      = "ledger-audit"
	defaultHTTPAddr        = ":8080"
	defaultShutdownTimeout = 5 * time.Second
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using environment", "error", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:      strings.ToLower(valueOrDefault("DB_DRIVER", defaultDriver)),
			Path:        valueOrDefault("DB_PATH", defaultDBPath),
			PostgresDSN: os.Getenv("POSTGRES_DSN"),
			ForeignKeys: parseBoolWithDefault("DB_FOREIGN_KEYS", false),
		},
		Currency: CurrencyConfig{
			BaseURL: strings.TrimRight(valueOrDefault("CURRENCY_API_URL", defaultCurrencyURL), "/"),
			APIKey:  os.Getenv("CURRENCY_API_KEY"),
			Strict:  parseBoolWithDefault("CURRENCY_STRICT", false),
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(os.Getenv("KAFKA_BROKER")),
			Topic:   valueOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
			GroupID: valueOrDefault("KAFKA_GROUP_ID", defaultKafkaGroup),
		},
		HTTP: HTTPConfig{
			Addr:        valueOrDefault("HTTP_ADDR", defaultHTTPAddr),
			MetricsAddr: os.Getenv("METRICS_ADDR"),
		},
		Logging: LoggingConfig{
			Level:  valueOrDefault("LOG_LEVEL", "info"),
			Format: valueOrDefault("LOG_FORMAT", "text"),
		},
		JWTSecret:    os.Getenv("JWT_SECRET"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	var err error
	if cfg.Currency.Timeout, err = parseDurationWithDefault("CURRENCY_TIMEOUT", defaultCurrencyTimeout); err != nil {
		return nil, err
	}
	if cfg.Redis.RateTTL, err = parseDurationWithDefault("RATE_CACHE_TTL", defaultRateTTL); err != nil {
		return nil, err
	}
	if cfg.HTTP.ShutdownTimeout, err = parseDurationWithDefault("HTTP_SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	switch cfg.Database.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Database.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	slog.Info("config loaded",
		"db_driver", cfg.Database.Driver,
		"db_path", cfg.Database.Path,
		"redis_addr", cfg.Redis.Addr,
		"kafka_brokers", cfg.Kafka.Brokers,
		"currency_strict", cfg.Currency.Strict)
	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
