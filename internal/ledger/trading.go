package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
)

// imbalanceEpsilon suppresses rounding noise from upstream float-based
// quantity computation. It filters detection only; recorded amounts are never
// altered by it.
var imbalanceEpsilon = decimal.NewFromFloat(1e-4)

// Imbalance is one commodity's residual quantity across a split set.
type Imbalance struct {
	Commodity commodities.Commodity
	Amount    decimal.Decimal
}

// NeedsTradingAccounts reports whether the splits span more than one distinct
// commodity, the condition under which value and quantity sums can diverge.
func NeedsTradingAccounts(splits []Split, commodityByAccount map[uuid.UUID]commodities.Commodity) bool {
	seen := make(map[string]struct{}, 2)
	for _, s := range splits {
		if cmdty, ok := commodityByAccount[s.AccountGUID]; ok {
			seen[cmdty.Key()] = struct{}{}
			if len(seen) > 1 {
				return true
			}
		}
	}
	return false
}

// QuantityImbalances sums quantities per commodity on a common decimal scale
// and returns the non-zero residuals, sorted by commodity key. Residuals with
// magnitude below the epsilon are discarded as float noise.
func QuantityImbalances(splits []Split, commodityByAccount map[uuid.UUID]commodities.Commodity) []Imbalance {
	sums := make(map[string]decimal.Decimal)
	byKey := make(map[string]commodities.Commodity)
	for _, s := range splits {
		cmdty, ok := commodityByAccount[s.AccountGUID]
		if !ok {
			continue
		}
		key := cmdty.Key()
		byKey[key] = cmdty
		sums[key] = sums[key].Add(s.Quantity.Decimal())
	}

	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Imbalance, 0, len(keys))
	for _, key := range keys {
		sum := sums[key]
		if sum.Abs().Cmp(imbalanceEpsilon) < 0 {
			continue
		}
		out = append(out, Imbalance{Commodity: byKey[key], Amount: sum})
	}
	return out
}

// GenerateTradingSplits emits one synthetic split per imbalanced commodity:
// zero value in the transaction currency and the negated imbalance as
// quantity, booked against that commodity's trading account. Appending the
// result to the original split set restores the quantity invariant for every
// commodity.
//
// The quantity is scaled to the commodity's own fraction. GnuCash hardcodes a
// denominator of 100 here, which truncates sub-cent residuals for commodities
// priced finer than two decimals.
func GenerateTradingSplits(txGUID uuid.UUID, currency commodities.Commodity, imbalances []Imbalance, tradingAccountByCommodity map[string]uuid.UUID) []Split {
	out := make([]Split, 0, len(imbalances))
	for _, imb := range imbalances {
		accountGUID, ok := tradingAccountByCommodity[imb.Commodity.Key()]
		if !ok {
			continue
		}
		fraction := imb.Commodity.Fraction
		if fraction <= 0 {
			fraction = 100
		}
		out = append(out, Split{
			GUID:        uuid.New(),
			TxGUID:      txGUID,
			AccountGUID: accountGUID,
			Memo:        TradingSplitMemo,
			Reconcile:   NotReconciled,
			Value:       numeric.Zero(currency.Fraction),
			Quantity:    numeric.FromDecimal(imb.Amount.Neg(), fraction),
		})
	}
	return out
}
