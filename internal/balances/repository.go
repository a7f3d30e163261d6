package balances

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cashbook-dev/cashbook/internal/platform/db"
)

// SplitSums is the per-account, per-commodity aggregate of split quantities.
// Total covers every split ever posted; Period only those whose transaction
// post date falls inside the requested window.
type SplitSums struct {
	AccountGUID   uuid.UUID
	CommodityGUID uuid.UUID
	Total         decimal.Decimal
	Period        decimal.Decimal
}

// Repository reads split aggregates.
type Repository interface {
	// SumSplits returns one row per (account, commodity) pair observed in the
	// account set. A single query serves arbitrarily deep hierarchies.
	SumSplits(ctx context.Context, accountGUIDs []uuid.UUID, from, to *time.Time) ([]SplitSums, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const sumSplitsQuery = `
SELECT s.account_guid,
       a.commodity_guid,
       COALESCE(SUM(s.quantity_num::numeric / s.quantity_denom::numeric), 0)::text AS total,
       COALESCE(SUM(CASE
           WHEN ($2::timestamptz IS NULL OR t.post_date >= $2)
            AND ($3::timestamptz IS NULL OR t.post_date <= $3)
           THEN s.quantity_num::numeric / s.quantity_denom::numeric
           ELSE 0
       END), 0)::text AS period
FROM splits s
JOIN transactions t ON t.guid = s.tx_guid
JOIN accounts a ON a.guid = s.account_guid
WHERE s.account_guid = ANY($1) AND s.quantity_denom <> 0
GROUP BY s.account_guid, a.commodity_guid`

func (r *repository) SumSplits(ctx context.Context, accountGUIDs []uuid.UUID, from, to *time.Time) ([]SplitSums, error) {
	var out []SplitSums
	err := db.WithReadTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, sumSplitsQuery, accountGUIDs, from, to)
		if err != nil {
			return fmt.Errorf("balances: sum splits: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s SplitSums
			var total, period string
			if err := rows.Scan(&s.AccountGUID, &s.CommodityGUID, &total, &period); err != nil {
				return fmt.Errorf("balances: scan sums: %w", err)
			}
			if s.Total, err = decimal.NewFromString(total); err != nil {
				return fmt.Errorf("balances: parse total %q: %w", total, err)
			}
			if s.Period, err = decimal.NewFromString(period); err != nil {
				return fmt.Errorf("balances: parse period %q: %w", period, err)
			}
			out = append(out, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
