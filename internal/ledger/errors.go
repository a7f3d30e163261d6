package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
)

var (
	// ErrTooFewSplits indicates fewer than two splits.
	ErrTooFewSplits = errors.New("ledger: transaction requires at least two splits")
	// ErrMissingCommodity indicates a split references an account whose native
	// commodity cannot be resolved. Fatal for the transaction, never retried.
	ErrMissingCommodity = errors.New("ledger: account commodity cannot be resolved")
	// ErrTransactionNotFound indicates a missing transaction.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrAccountNotFound indicates a missing account inside a posting.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrDuplicateAccount indicates a (parent, name) conflict on account
	// creation. Recovered inside the provisioner, never surfaced.
	ErrDuplicateAccount = errors.New("ledger: account already exists under parent")
)

// Residual is one commodity's non-zero remainder after balance checking.
type Residual struct {
	Commodity commodities.Commodity
	Amount    numeric.Amount
}

// ImbalanceError reports the per-commodity residuals of an unbalanced
// transaction. ValueResidual covers the transaction-currency value sum.
type ImbalanceError struct {
	ValueResidual *Residual
	Residuals     []Residual
}

func (e *ImbalanceError) Error() string {
	parts := make([]string, 0, len(e.Residuals)+1)
	if e.ValueResidual != nil {
		parts = append(parts, fmt.Sprintf("value %s %s", e.ValueResidual.Commodity.Mnemonic, e.ValueResidual.Amount))
	}
	for _, r := range e.Residuals {
		parts = append(parts, fmt.Sprintf("%s %s", r.Commodity.Mnemonic, r.Amount))
	}
	return "ledger: transaction does not balance: " + strings.Join(parts, ", ")
}
