package fxrates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Hour)
}

func TestCacheFetchStoresAndReuses(t *testing.T) {
	cache := testCache(t)
	commodity := uuid.New()
	currency := uuid.New()
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	loads := 0
	loader := func(context.Context) (Rate, error) {
		loads++
		return Rate{
			CommodityGUID: commodity,
			CurrencyGUID:  currency,
			Date:          asOf,
			Source:        "user:price",
			Value:         decimal.RequireFromString("0.85"),
		}, nil
	}

	first, err := cache.Fetch(context.Background(), commodity, currency, asOf, loader)
	require.NoError(t, err)
	second, err := cache.Fetch(context.Background(), commodity, currency, asOf, loader)
	require.NoError(t, err)

	require.Equal(t, 1, loads, "second fetch must come from the cache")
	require.True(t, first.Value.Equal(second.Value))
	require.Equal(t, first.CommodityGUID, second.CommodityGUID)
}

func TestCacheFetchKeysByDay(t *testing.T) {
	cache := testCache(t)
	commodity := uuid.New()
	currency := uuid.New()

	loads := 0
	loader := func(context.Context) (Rate, error) {
		loads++
		return Rate{Value: decimal.NewFromInt(int64(loads))}, nil
	}

	_, err := cache.Fetch(context.Background(), commodity, currency, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), loader)
	require.NoError(t, err)
	_, err = cache.Fetch(context.Background(), commodity, currency, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestCacheFetchDoesNotCacheErrors(t *testing.T) {
	cache := testCache(t)
	commodity := uuid.New()
	currency := uuid.New()
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	loads := 0
	loader := func(context.Context) (Rate, error) {
		loads++
		if loads == 1 {
			return Rate{}, ErrRateUnavailable
		}
		return Rate{Value: decimal.NewFromInt(2)}, nil
	}

	_, err := cache.Fetch(context.Background(), commodity, currency, asOf, loader)
	require.True(t, errors.Is(err, ErrRateUnavailable))

	rate, err := cache.Fetch(context.Background(), commodity, currency, asOf, loader)
	require.NoError(t, err)
	require.True(t, rate.Value.Equal(decimal.NewFromInt(2)))
	require.Equal(t, 2, loads)
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	rate, err := cache.Fetch(context.Background(), uuid.New(), uuid.New(), time.Now(), func(context.Context) (Rate, error) {
		return Rate{Value: decimal.NewFromInt(7)}, nil
	})
	require.NoError(t, err)
	require.True(t, rate.Value.Equal(decimal.NewFromInt(7)))
}
