package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
	"github.com/cashbook-dev/cashbook/internal/shared"
)

// Repository encapsulates DB operations for the ledger. Everything a posting
// writes runs inside WithTx so splits, trading splits, and any provisioned
// accounts commit together or not at all.
type Repository interface {
	ListTransactions(ctx context.Context, limit, offset int) ([]Transaction, int, error)
	GetTransaction(ctx context.Context, guid uuid.UUID) (Transaction, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available within a posting transaction.
type TxRepository interface {
	AccountTx

	GetAccountsByGUIDs(ctx context.Context, guids []uuid.UUID) (map[uuid.UUID]accounts.Account, error)
	GetCommoditiesByGUIDs(ctx context.Context, guids []uuid.UUID) (map[uuid.UUID]commodities.Commodity, error)
	GetCommodityByMnemonic(ctx context.Context, namespace, mnemonic string) (commodities.Commodity, error)
	InsertTransaction(ctx context.Context, entry Transaction) error
	InsertSplits(ctx context.Context, splits []Split) error
}

// Service validates, balances, and persists transactions.
type Service struct {
	repo         Repository
	baseMnemonic string
	now          func() time.Time
}

func NewService(repo Repository, baseMnemonic string) *Service {
	return &Service{repo: repo, baseMnemonic: baseMnemonic, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, page, perPage int) ([]Transaction, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	entries, total, err := s.repo.ListTransactions(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, shared.NewPagination(p.Page, p.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, guid uuid.UUID) (Transaction, error) {
	return s.repo.GetTransaction(ctx, guid)
}

// Post checks the double-entry invariant on the caller's splits and persists
// the transaction. When the splits span multiple commodities, the quantity
// imbalances are absorbed by synthetic splits against lazily provisioned
// trading accounts; the finalized set (original plus synthetic) is returned.
// An unbalanced transaction is never persisted.
func (s *Service) Post(ctx context.Context, input PostingInput) (Transaction, error) {
	if err := input.Validate(); err != nil {
		return Transaction{}, err
	}

	var result Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		currency, err := tx.GetCommodityByMnemonic(ctx, commodities.NamespaceCurrency, input.Currency)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return fmt.Errorf("%w: currency %s", ErrMissingCommodity, input.Currency)
			}
			return err
		}

		splits, commodityByAccount, err := s.buildSplits(ctx, tx, currency, input)
		if err != nil {
			return err
		}

		entry := Transaction{
			GUID:         splits[0].TxGUID,
			CurrencyGUID: currency.GUID,
			Num:          input.Num,
			PostDate:     input.postDate(),
			EnterDate:    s.now(),
			Description:  input.Description,
			Splits:       splits,
		}

		checkErr := CheckBalance(currency, splits, commodityByAccount)
		var imbalance *ImbalanceError
		switch {
		case checkErr == nil:
		case errors.As(checkErr, &imbalance) && imbalance.ValueResidual == nil && NeedsTradingAccounts(splits, commodityByAccount):
			combined, err := s.balanceWithTrading(ctx, tx, currency, splits, commodityByAccount)
			if err != nil {
				return err
			}
			entry.Splits = combined
		default:
			return checkErr
		}

		if err := tx.InsertTransaction(ctx, entry); err != nil {
			return err
		}
		if err := tx.InsertSplits(ctx, entry.Splits); err != nil {
			return err
		}
		result = entry
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	return result, nil
}

func (s *Service) buildSplits(ctx context.Context, tx TxRepository, currency commodities.Commodity, input PostingInput) ([]Split, map[uuid.UUID]commodities.Commodity, error) {
	accountGUIDs := make([]uuid.UUID, 0, len(input.Splits))
	for _, in := range input.Splits {
		guid, _ := uuid.Parse(in.AccountGUID)
		accountGUIDs = append(accountGUIDs, guid)
	}

	accts, err := tx.GetAccountsByGUIDs(ctx, accountGUIDs)
	if err != nil {
		return nil, nil, err
	}
	commodityGUIDs := make([]uuid.UUID, 0, len(accts))
	for _, a := range accts {
		commodityGUIDs = append(commodityGUIDs, a.CommodityGUID)
	}
	cmdties, err := tx.GetCommoditiesByGUIDs(ctx, commodityGUIDs)
	if err != nil {
		return nil, nil, err
	}

	commodityByAccount := make(map[uuid.UUID]commodities.Commodity, len(accts))
	for guid, a := range accts {
		cmdty, ok := cmdties[a.CommodityGUID]
		if !ok {
			return nil, nil, fmt.Errorf("%w: account %s", ErrMissingCommodity, guid)
		}
		commodityByAccount[guid] = cmdty
	}

	txGUID := uuid.New()
	splits := make([]Split, 0, len(input.Splits))
	for _, in := range input.Splits {
		accountGUID, _ := uuid.Parse(in.AccountGUID)
		if _, ok := accts[accountGUID]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountGUID)
		}
		native := commodityByAccount[accountGUID]

		value, err := numeric.FromString(in.Value, currency.Fraction)
		if err != nil {
			return nil, nil, err
		}
		var quantity numeric.Amount
		if in.Quantity != "" {
			quantity, err = numeric.FromString(in.Quantity, native.Fraction)
			if err != nil {
				return nil, nil, err
			}
		} else {
			quantity = numeric.FromDecimal(value.Decimal(), native.Fraction)
		}

		splits = append(splits, Split{
			GUID:        uuid.New(),
			TxGUID:      txGUID,
			AccountGUID: accountGUID,
			Memo:        in.Memo,
			Reconcile:   NotReconciled,
			Value:       value,
			Quantity:    quantity,
		})
	}
	return splits, commodityByAccount, nil
}

func (s *Service) balanceWithTrading(ctx context.Context, tx TxRepository, currency commodities.Commodity, splits []Split, commodityByAccount map[uuid.UUID]commodities.Commodity) ([]Split, error) {
	base, err := tx.GetCommodityByMnemonic(ctx, commodities.NamespaceCurrency, s.baseMnemonic)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		// No configured base in this book; the transaction currency is the
		// best available fallback for structural trading accounts.
		base = currency
	}
	prov := NewProvisioner(base)

	imbalances := QuantityImbalances(splits, commodityByAccount)
	tradingByCommodity := make(map[string]uuid.UUID, len(imbalances))
	for _, imb := range imbalances {
		leaf, err := prov.TradingAccount(ctx, tx, imb.Commodity)
		if err != nil {
			return nil, err
		}
		tradingByCommodity[imb.Commodity.Key()] = leaf.GUID
		commodityByAccount[leaf.GUID] = imb.Commodity
	}

	combined := append(splits, GenerateTradingSplits(splits[0].TxGUID, currency, imbalances, tradingByCommodity)...)

	// The generated splits cancel every imbalance by construction; this
	// re-check catches residuals finer than a commodity's fraction.
	if err := CheckBalance(currency, combined, commodityByAccount); err != nil {
		return nil, err
	}
	return combined, nil
}
