package currency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/honeynil/bank-ledger/internal/infrastructure/observability"
	"github.com/honeynil/bank-ledger/internal/infrastructure/redis"
	"github.com/shopspring/decimal"
)

// CachedProvider keeps rates in Redis for ttl. Cache failures never fail a
// lookup; they fall through to the wrapped provider.
type CachedProvider struct {
	next  RateProvider
	cache redis.RedisClient
	ttl   time.Duration
}

func NewCachedProvider(next RateProvider, cache redis.RedisClient, ttl time.Duration) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

func rateKey(from, to string) string {
	return redis.Key("rate", from, to)
}

func (p *CachedProvider) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := rateKey(from, to)

	cached, err := p.cache.Get(ctx, key)
	switch {
	case err == nil:
		if rate, perr := decimal.NewFromString(cached); perr == nil {
			observability.RateLookups.WithLabelValues("cache", "hit").Inc()
			return rate, nil
		}
		slog.Warn("discarding malformed cached rate", "key", key, "value", cached)
	case errors.Is(err, redis.ErrKeyNotFound):
		observability.RateLookups.WithLabelValues("cache", "miss").Inc()
	default:
		slog.Warn("rate cache unavailable", "key", key, "error", err)
	}

	rate, err := p.next.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if err := p.cache.Set(ctx, key, rate.String(), p.ttl); err != nil {
		slog.Warn("failed to cache rate", "key", key, "error", err)
	}
	return rate, nil
}
