package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cashbook-dev/cashbook/internal/accounts"
)

// memoryAccountTx implements AccountTx over maps.
type memoryAccountTx struct {
	root         accounts.Account
	byGUID       map[uuid.UUID]accounts.Account
	byParentName map[string]uuid.UUID

	insertConflicts int
	inserted        int
}

func newMemoryAccountTx() *memoryAccountTx {
	root := accounts.Account{GUID: uuid.New(), Name: "Root Account", Type: accounts.TypeRoot}
	tx := &memoryAccountTx{
		root:         root,
		byGUID:       map[uuid.UUID]accounts.Account{root.GUID: root},
		byParentName: map[string]uuid.UUID{},
	}
	return tx
}

func parentNameKey(parent uuid.UUID, name string) string {
	return parent.String() + "/" + name
}

func (tx *memoryAccountTx) GetRootAccount(ctx context.Context) (accounts.Account, error) {
	return tx.root, nil
}

func (tx *memoryAccountTx) GetAccountByParentAndName(ctx context.Context, parent uuid.UUID, name string) (accounts.Account, error) {
	if guid, ok := tx.byParentName[parentNameKey(parent, name)]; ok {
		return tx.byGUID[guid], nil
	}
	return accounts.Account{}, ErrAccountNotFound
}

func (tx *memoryAccountTx) InsertAccount(ctx context.Context, a accounts.Account) error {
	key := parentNameKey(*a.ParentGUID, a.Name)
	if _, exists := tx.byParentName[key]; exists {
		return ErrDuplicateAccount
	}
	if tx.insertConflicts > 0 {
		// Simulate a concurrent creator winning the (parent, name) race.
		tx.insertConflicts--
		winner := a
		winner.GUID = uuid.New()
		tx.byGUID[winner.GUID] = winner
		tx.byParentName[key] = winner.GUID
		return ErrDuplicateAccount
	}
	tx.byGUID[a.GUID] = a
	tx.byParentName[key] = a.GUID
	tx.inserted++
	return nil
}

func TestProvisionerCreatesCanonicalHierarchy(t *testing.T) {
	usd := currencyFixture("USD")
	eur := currencyFixture("EUR")
	tx := newMemoryAccountTx()
	prov := NewProvisioner(usd)

	leaf, err := prov.TradingAccount(context.Background(), tx, eur)
	require.NoError(t, err)
	require.Equal(t, "EUR", leaf.Name)
	require.Equal(t, accounts.TypeTrading, leaf.Type)
	require.Equal(t, eur.GUID, leaf.CommodityGUID)
	require.False(t, leaf.Placeholder)

	group := tx.byGUID[*leaf.ParentGUID]
	require.Equal(t, "CURRENCY", group.Name)
	require.True(t, group.Placeholder)

	trading := tx.byGUID[*group.ParentGUID]
	require.Equal(t, "Trading", trading.Name)
	require.Equal(t, accounts.TypeTrading, trading.Type)
	require.True(t, trading.Placeholder)
	require.Equal(t, tx.root.GUID, *trading.ParentGUID)
	require.Equal(t, usd.GUID, trading.CommodityGUID)
}

func TestProvisionerIsIdempotent(t *testing.T) {
	usd := currencyFixture("USD")
	eur := currencyFixture("EUR")
	tx := newMemoryAccountTx()
	prov := NewProvisioner(usd)

	first, err := prov.TradingAccount(context.Background(), tx, eur)
	require.NoError(t, err)
	second, err := prov.TradingAccount(context.Background(), tx, eur)
	require.NoError(t, err)
	require.Equal(t, first.GUID, second.GUID)
	require.Equal(t, 3, tx.inserted, "hierarchy must not be duplicated")

	// A second commodity shares the structural levels.
	gbp := currencyFixture("GBP")
	_, err = prov.TradingAccount(context.Background(), tx, gbp)
	require.NoError(t, err)
	require.Equal(t, 4, tx.inserted)
}

func TestProvisionerRecoversCreateRace(t *testing.T) {
	usd := currencyFixture("USD")
	eur := currencyFixture("EUR")
	tx := newMemoryAccountTx()
	tx.insertConflicts = 1
	prov := NewProvisioner(usd)

	leaf, err := prov.TradingAccount(context.Background(), tx, eur)
	require.NoError(t, err, "conflicts must be recovered by re-reading the winner")

	winner, err := tx.GetAccountByParentAndName(context.Background(), *leaf.ParentGUID, leaf.Name)
	require.NoError(t, err)
	require.Equal(t, winner.GUID, leaf.GUID)
}
