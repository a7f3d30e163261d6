package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/commodities"
)

// AccountTx is the slice of transactional storage the provisioner needs:
// race-safe lookup/create of accounts by (parent, name). Implemented by the
// ledger TxRepository so provisioned accounts commit with the caller's splits.
type AccountTx interface {
	GetRootAccount(ctx context.Context) (accounts.Account, error)
	GetAccountByParentAndName(ctx context.Context, parentGUID uuid.UUID, name string) (accounts.Account, error)
	InsertAccount(ctx context.Context, a accounts.Account) error
}

const (
	tradingRootName  = "Trading"
	tradingGroupName = commodities.NamespaceCurrency
)

// Provisioner resolves or lazily creates the canonical
// Trading:CURRENCY:<MNEMONIC> hierarchy that holds synthetic balancing
// splits. The base currency is explicit configuration so multiple books can
// be served by one process.
type Provisioner struct {
	base commodities.Commodity
}

func NewProvisioner(base commodities.Commodity) *Provisioner {
	return &Provisioner{base: base}
}

// TradingAccount returns the leaf trading account for the given commodity,
// creating any missing levels inside the caller's transaction. Idempotent:
// repeated calls for the same mnemonic yield the same GUID. A concurrent
// creator winning the (parent, name) race is recovered by re-reading the
// winner's row.
func (p *Provisioner) TradingAccount(ctx context.Context, tx AccountTx, commodity commodities.Commodity) (accounts.Account, error) {
	root, err := tx.GetRootAccount(ctx)
	if err != nil {
		return accounts.Account{}, fmt.Errorf("ledger: resolve book root: %w", err)
	}

	// Structural levels hold no splits of their own. Their native commodity
	// falls back to the base currency.
	structural := p.base
	if !structural.IsCurrency() {
		structural = commodity
	}

	trading, err := p.ensure(ctx, tx, accounts.Account{
		Name:          tradingRootName,
		Type:          accounts.TypeTrading,
		ParentGUID:    &root.GUID,
		CommodityGUID: structural.GUID,
		Placeholder:   true,
	})
	if err != nil {
		return accounts.Account{}, err
	}

	group, err := p.ensure(ctx, tx, accounts.Account{
		Name:          tradingGroupName,
		Type:          accounts.TypeTrading,
		ParentGUID:    &trading.GUID,
		CommodityGUID: structural.GUID,
		Placeholder:   true,
	})
	if err != nil {
		return accounts.Account{}, err
	}

	leaf, err := p.ensure(ctx, tx, accounts.Account{
		Name:          commodity.Mnemonic,
		Type:          accounts.TypeTrading,
		ParentGUID:    &group.GUID,
		CommodityGUID: commodity.GUID,
		Placeholder:   false,
	})
	if err != nil {
		return accounts.Account{}, err
	}
	return leaf, nil
}

func (p *Provisioner) ensure(ctx context.Context, tx AccountTx, want accounts.Account) (accounts.Account, error) {
	existing, err := tx.GetAccountByParentAndName(ctx, *want.ParentGUID, want.Name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return accounts.Account{}, err
	}

	want.GUID = uuid.New()
	if err := tx.InsertAccount(ctx, want); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			// Lost the race; the winner's row is the canonical one.
			return tx.GetAccountByParentAndName(ctx, *want.ParentGUID, want.Name)
		}
		return accounts.Account{}, err
	}
	return want, nil
}
