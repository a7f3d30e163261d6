package fxrates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lookup resolves the rate converting one unit of the commodity into the
// target currency as of a reference date. Implementations return
// ErrRateUnavailable when no conversion exists.
type Lookup func(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (decimal.Decimal, error)

// Service resolves rates through the cache.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) FindRate(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (Rate, error) {
	return s.cache.Fetch(ctx, commodityGUID, currencyGUID, asOf, func(ctx context.Context) (Rate, error) {
		return s.repo.FindRate(ctx, commodityGUID, currencyGUID, asOf)
	})
}

// LookupFunc adapts the service to the narrow Lookup contract consumed by the
// balance aggregator.
func (s *Service) LookupFunc() Lookup {
	return func(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
		rate, err := s.FindRate(ctx, commodityGUID, currencyGUID, asOf)
		if err != nil {
			return decimal.Zero, err
		}
		return rate.Value, nil
	}
}
