package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashbook-dev/cashbook/internal/shared"
)

// Repository exposes read access to the chart of accounts. Writes happen only
// inside ledger transactions (see the ledger package's TxRepository), so the
// trading hierarchy commits atomically with the splits that need it.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (Account, error)
	GetByFullName(ctx context.Context, fullName string) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `guid, name, account_type, parent_guid, commodity_guid, code, description, hidden, placeholder`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.GUID, &a.Name, &a.Type, &a.ParentGUID, &a.CommodityGUID, &a.Code, &a.Description, &a.Hidden, &a.Placeholder)
	return a, err
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("accounts: list: %w", err)
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.GUID, &a.Name, &a.Type, &a.ParentGUID, &a.CommodityGUID, &a.Code, &a.Description, &a.Hidden, &a.Placeholder); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetByGUID(ctx context.Context, guid uuid.UUID) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE guid=$1`, guid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// GetByFullName walks a colon-separated path from the ROOT account.
func (r *repository) GetByFullName(ctx context.Context, fullName string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `
WITH RECURSIVE walk AS (
    SELECT `+accountColumns+`, ''::text AS path FROM accounts WHERE account_type = 'ROOT'
    UNION ALL
    SELECT a.guid, a.name, a.account_type, a.parent_guid, a.commodity_guid, a.code, a.description, a.hidden, a.placeholder,
           CASE WHEN walk.path = '' THEN a.name ELSE walk.path || ':' || a.name END
    FROM accounts a JOIN walk ON a.parent_guid = walk.guid
)
SELECT `+accountColumns+` FROM walk WHERE path = $1`, fullName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}
