package ledger

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
)

// CheckBalance enforces the double-entry invariant on a proposed split set:
// the value sum across all splits must be exactly zero in the transaction
// currency, and for every commodity among the splits' accounts the quantity
// sum in that commodity must be exactly zero. Pure: touches no storage and
// mutates nothing.
//
// On failure it returns an *ImbalanceError carrying the signed residual per
// commodity, which feeds the trading-split resolver.
func CheckBalance(currency commodities.Commodity, splits []Split, commodityByAccount map[uuid.UUID]commodities.Commodity) error {
	if len(splits) < 2 {
		return ErrTooFewSplits
	}

	valueSum := numeric.Zero(currency.Fraction)
	quantitySums := make(map[string]numeric.Amount)
	byKey := make(map[string]commodities.Commodity)

	for _, s := range splits {
		cmdty, ok := commodityByAccount[s.AccountGUID]
		if !ok {
			return fmt.Errorf("%w: account %s", ErrMissingCommodity, s.AccountGUID)
		}
		valueSum = valueSum.Add(s.Value)
		key := cmdty.Key()
		byKey[key] = cmdty
		if sum, seen := quantitySums[key]; seen {
			quantitySums[key] = sum.Add(s.Quantity)
		} else {
			quantitySums[key] = s.Quantity
		}
	}

	imbalance := &ImbalanceError{}
	if !valueSum.IsZero() {
		imbalance.ValueResidual = &Residual{Commodity: currency, Amount: valueSum}
	}
	keys := make([]string, 0, len(quantitySums))
	for key := range quantitySums {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if sum := quantitySums[key]; !sum.IsZero() {
			imbalance.Residuals = append(imbalance.Residuals, Residual{Commodity: byKey[key], Amount: sum})
		}
	}

	if imbalance.ValueResidual != nil || len(imbalance.Residuals) > 0 {
		return imbalance
	}
	return nil
}
