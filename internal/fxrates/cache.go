package fxrates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache keeps resolved rates in Redis so report builds pay one lookup per
// commodity per day instead of one per request. A nil cache is a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func rateKey(commodityGUID, currencyGUID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("fxrates:%s:%s:%s", commodityGUID, currencyGUID, asOf.Format("2006-01-02"))
}

// Fetch loads a cached rate or resolves and stores it via the loader. Cache
// failures degrade to the loader; they never fail the lookup.
func (c *Cache) Fetch(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time, loader func(context.Context) (Rate, error)) (Rate, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	key := rateKey(commodityGUID, currencyGUID, asOf)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var rate Rate
		if err := json.Unmarshal(raw, &rate); err == nil {
			return rate, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return loader(ctx)
	}

	rate, err := loader(ctx)
	if err != nil {
		return Rate{}, err
	}
	if data, err := json.Marshal(rate); err == nil {
		_ = c.client.Set(ctx, key, data, c.ttl).Err()
	}
	return rate, nil
}
