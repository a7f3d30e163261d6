package commodities

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashbook-dev/cashbook/internal/shared"
)

// Repository exposes read access to the commodity table.
type Repository interface {
	List(ctx context.Context) ([]Commodity, error)
	GetByGUID(ctx context.Context, guid uuid.UUID) (Commodity, error)
	GetByMnemonic(ctx context.Context, namespace, mnemonic string) (Commodity, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Commodity, error) {
	rows, err := r.db.Query(ctx, `SELECT guid, namespace, mnemonic, fullname, fraction, quote_source
FROM commodities WHERE namespace <> $1 ORDER BY namespace, mnemonic`, NamespaceTemplate)
	if err != nil {
		return nil, fmt.Errorf("commodities: list: %w", err)
	}
	defer rows.Close()
	var out []Commodity
	for rows.Next() {
		var c Commodity
		if err := rows.Scan(&c.GUID, &c.Namespace, &c.Mnemonic, &c.Fullname, &c.Fraction, &c.QuoteSource); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) GetByGUID(ctx context.Context, guid uuid.UUID) (Commodity, error) {
	var c Commodity
	err := r.db.QueryRow(ctx, `SELECT guid, namespace, mnemonic, fullname, fraction, quote_source
FROM commodities WHERE guid=$1`, guid).
		Scan(&c.GUID, &c.Namespace, &c.Mnemonic, &c.Fullname, &c.Fraction, &c.QuoteSource)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commodity{}, shared.ErrNotFound
		}
		return Commodity{}, err
	}
	return c, nil
}

func (r *repository) GetByMnemonic(ctx context.Context, namespace, mnemonic string) (Commodity, error) {
	var c Commodity
	err := r.db.QueryRow(ctx, `SELECT guid, namespace, mnemonic, fullname, fraction, quote_source
FROM commodities WHERE namespace=$1 AND mnemonic=$2`, namespace, mnemonic).
		Scan(&c.GUID, &c.Namespace, &c.Mnemonic, &c.Fullname, &c.Fraction, &c.QuoteSource)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Commodity{}, shared.ErrNotFound
		}
		return Commodity{}, err
	}
	return c, nil
}
