package fxrates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads price rows.
type Repository interface {
	FindRate(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (Rate, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// FindRate returns the newest price at or before asOf; when the pair only has
// later quotes, the earliest one after asOf is used instead.
func (r *repository) FindRate(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (Rate, error) {
	rate, err := r.queryOne(ctx, `SELECT commodity_guid, currency_guid, date, source, value_num, value_denom
FROM prices WHERE commodity_guid=$1 AND currency_guid=$2 AND date <= $3 ORDER BY date DESC LIMIT 1`,
		commodityGUID, currencyGUID, asOf)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, fmt.Errorf("fxrates: find rate: %w", err)
	}

	rate, err = r.queryOne(ctx, `SELECT commodity_guid, currency_guid, date, source, value_num, value_denom
FROM prices WHERE commodity_guid=$1 AND currency_guid=$2 AND date > $3 ORDER BY date ASC LIMIT 1`,
		commodityGUID, currencyGUID, asOf)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rate{}, ErrRateUnavailable
		}
		return Rate{}, fmt.Errorf("fxrates: find rate: %w", err)
	}
	return rate, nil
}

func (r *repository) queryOne(ctx context.Context, query string, args ...any) (Rate, error) {
	var rate Rate
	var num, denom int64
	err := r.db.QueryRow(ctx, query, args...).
		Scan(&rate.CommodityGUID, &rate.CurrencyGUID, &rate.Date, &rate.Source, &num, &denom)
	if err != nil {
		return Rate{}, err
	}
	if denom == 0 {
		return Rate{}, ErrRateUnavailable
	}
	rate.Value = decimal.NewFromInt(num).Div(decimal.NewFromInt(denom))
	return rate, nil
}
