package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
	"github.com/cashbook-dev/cashbook/internal/platform/db"
	"github.com/cashbook-dev/cashbook/internal/shared"
)

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) ListTransactions(ctx context.Context, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ledger: count transactions: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT guid, currency_guid, num, post_date, enter_date, description
FROM transactions ORDER BY post_date DESC, enter_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger: list transactions: %w", err)
	}
	defer rows.Close()

	var entries []Transaction
	var guids []uuid.UUID
	for rows.Next() {
		var e Transaction
		if err := rows.Scan(&e.GUID, &e.CurrencyGUID, &e.Num, &e.PostDate, &e.EnterDate, &e.Description); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
		guids = append(guids, e.GUID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(entries) == 0 {
		return entries, total, nil
	}

	splitsByTx, err := r.splitsForTransactions(ctx, guids)
	if err != nil {
		return nil, 0, err
	}
	for i := range entries {
		entries[i].Splits = splitsByTx[entries[i].GUID]
	}
	return entries, total, nil
}

func (r *repository) GetTransaction(ctx context.Context, guid uuid.UUID) (Transaction, error) {
	var e Transaction
	err := r.db.QueryRow(ctx, `SELECT guid, currency_guid, num, post_date, enter_date, description
FROM transactions WHERE guid=$1`, guid).
		Scan(&e.GUID, &e.CurrencyGUID, &e.Num, &e.PostDate, &e.EnterDate, &e.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	splitsByTx, err := r.splitsForTransactions(ctx, []uuid.UUID{guid})
	if err != nil {
		return Transaction{}, err
	}
	e.Splits = splitsByTx[guid]
	return e, nil
}

func (r *repository) splitsForTransactions(ctx context.Context, txGUIDs []uuid.UUID) (map[uuid.UUID][]Split, error) {
	rows, err := r.db.Query(ctx, `SELECT guid, tx_guid, account_guid, memo, reconcile_state, reconcile_date,
value_num, value_denom, quantity_num, quantity_denom
FROM splits WHERE tx_guid = ANY($1) ORDER BY tx_guid, guid`, txGUIDs)
	if err != nil {
		return nil, fmt.Errorf("ledger: load splits: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]Split, len(txGUIDs))
	for rows.Next() {
		var s Split
		var valueNum, valueDenom, quantityNum, quantityDenom int64
		if err := rows.Scan(&s.GUID, &s.TxGUID, &s.AccountGUID, &s.Memo, &s.Reconcile, &s.ReconcileDate,
			&valueNum, &valueDenom, &quantityNum, &quantityDenom); err != nil {
			return nil, err
		}
		s.Value = numeric.New(valueNum, valueDenom)
		s.Quantity = numeric.New(quantityNum, quantityDenom)
		out[s.TxGUID] = append(out[s.TxGUID], s)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccountsByGUIDs(ctx context.Context, guids []uuid.UUID) (map[uuid.UUID]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT guid, name, account_type, parent_guid, commodity_guid, code, description, hidden, placeholder
FROM accounts WHERE guid = ANY($1)`, guids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]accounts.Account, len(guids))
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.GUID, &a.Name, &a.Type, &a.ParentGUID, &a.CommodityGUID, &a.Code, &a.Description, &a.Hidden, &a.Placeholder); err != nil {
			return nil, err
		}
		out[a.GUID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) GetCommoditiesByGUIDs(ctx context.Context, guids []uuid.UUID) (map[uuid.UUID]commodities.Commodity, error) {
	rows, err := r.tx.Query(ctx, `SELECT guid, namespace, mnemonic, fullname, fraction, quote_source
FROM commodities WHERE guid = ANY($1)`, guids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]commodities.Commodity, len(guids))
	for rows.Next() {
		var c commodities.Commodity
		if err := rows.Scan(&c.GUID, &c.Namespace, &c.Mnemonic, &c.Fullname, &c.Fraction, &c.QuoteSource); err != nil {
			return nil, err
		}
		out[c.GUID] = c
	}
	return out, rows.Err()
}

func (r *txRepository) GetCommodityByMnemonic(ctx context.Context, namespace, mnemonic string) (commodities.Commodity, error) {
	var c commodities.Commodity
	err := r.tx.QueryRow(ctx, `SELECT guid, namespace, mnemonic, fullname, fraction, quote_source
FROM commodities WHERE namespace=$1 AND mnemonic=$2`, namespace, mnemonic).
		Scan(&c.GUID, &c.Namespace, &c.Mnemonic, &c.Fullname, &c.Fraction, &c.QuoteSource)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return commodities.Commodity{}, shared.ErrNotFound
		}
		return commodities.Commodity{}, err
	}
	return c, nil
}

func (r *txRepository) GetRootAccount(ctx context.Context) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `SELECT guid, name, account_type, parent_guid, commodity_guid, code, description, hidden, placeholder
FROM accounts WHERE account_type='ROOT' ORDER BY name LIMIT 1`).
		Scan(&a.GUID, &a.Name, &a.Type, &a.ParentGUID, &a.CommodityGUID, &a.Code, &a.Description, &a.Hidden, &a.Placeholder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) GetAccountByParentAndName(ctx context.Context, parentGUID uuid.UUID, name string) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `SELECT guid, name, account_type, parent_guid, commodity_guid, code, description, hidden, placeholder
FROM accounts WHERE parent_guid=$1 AND name=$2`, parentGUID, name).
		Scan(&a.GUID, &a.Name, &a.Type, &a.ParentGUID, &a.CommodityGUID, &a.Code, &a.Description, &a.Hidden, &a.Placeholder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) InsertAccount(ctx context.Context, a accounts.Account) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO accounts (guid, name, account_type, parent_guid, commodity_guid, code, description, hidden, placeholder)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`, a.GUID, a.Name, a.Type, a.ParentGUID, a.CommodityGUID, a.Code, a.Description, a.Hidden, a.Placeholder)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, entry Transaction) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO transactions (guid, currency_guid, num, post_date, enter_date, description)
VALUES ($1,$2,$3,$4,$5,$6)`, entry.GUID, entry.CurrencyGUID, entry.Num, entry.PostDate, entry.EnterDate, entry.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *txRepository) InsertSplits(ctx context.Context, splits []Split) error {
	for _, s := range splits {
		if _, err := r.tx.Exec(ctx, `INSERT INTO splits (guid, tx_guid, account_guid, memo, reconcile_state, reconcile_date,
value_num, value_denom, quantity_num, quantity_denom)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			s.GUID, s.TxGUID, s.AccountGUID, s.Memo, s.Reconcile, s.ReconcileDate,
			s.Value.Num, s.Value.Denom, s.Quantity.Num, s.Quantity.Denom); err != nil {
			return err
		}
	}
	return nil
}
