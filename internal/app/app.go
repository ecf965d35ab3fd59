package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/bank-ledger/internal/config"
	"github.com/honeynil/bank-ledger/internal/currency"
	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/infrastructure/auth"
	"github.com/honeynil/bank-ledger/internal/infrastructure/kafka"
	"github.com/honeynil/bank-ledger/internal/infrastructure/redis"
	"github.com/honeynil/bank-ledger/internal/repository/sqldb"
	service "github.com/honeynil/bank-ledger/internal/services"
)

// App holds the wired dependencies shared by the server and the CLI.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Dialect   database.Dialect
	Ledger    *service.LedgerService
	Analytics *service.AnalyticsService
	// Tokens is nil when JWT_SECRET is unset.
	Tokens *auth.TokenManager

	cache    *redis.Client
	producer *kafka.Producer
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, dialect, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, Dialect: dialect}

	var rates currency.RateProvider = currency.NewFreeCurrencyAPI(cfg.Currency)
	if cfg.Redis.Addr != "" {
		cache, err := redis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			slog.Warn("redis unavailable, rates and token revocation are not cached", "error", err)
		} else {
			a.cache = cache
			rates = currency.NewCachedProvider(rates, cache, cfg.Redis.RateTTL)
		}
	}

	var events service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		a.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		events = a.producer
	}

	if cfg.JWTSecret != "" {
		var revoked redis.RedisClient
		if a.cache != nil {
			revoked = a.cache
		}
		if a.Tokens, err = auth.NewTokenManager(cfg.JWTSecret, revoked); err != nil {
			a.Close()
			return nil, err
		}
	}

	store := sqldb.NewStore(db)
	a.Ledger = service.NewLedgerService(store, currency.NewConverter(rates, cfg.Currency.Strict), events)
	a.Analytics = service.NewAnalyticsService(store, nil)
	return a, nil
}

// NewAuditConsumer reads the transfer topic with the configured group.
func (a *App) NewAuditConsumer() (*kafka.Consumer, error) {
	if len(a.Config.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("audit needs KAFKA_BROKER")
	}
	return kafka.NewConsumer(a.Config.Kafka.Brokers, a.Config.Kafka.Topic, a.Config.Kafka.GroupID,
		sqldb.NewTransactionRepository(a.DB)), nil
}

func (a *App) Close() error {
	var errs []error
	if a.producer != nil {
		errs = append(errs, a.producer.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
