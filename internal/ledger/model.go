package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/numeric"
)

// ReconcileState tracks a split's reconciliation status using the single
// character codes GnuCash stores.
type ReconcileState string

const (
	NotReconciled ReconcileState = "n"
	Cleared       ReconcileState = "c"
	Reconciled    ReconcileState = "y"
)

// TradingSplitMemo marks system-generated trading splits so they can be told
// apart from user-entered legs.
const TradingSplitMemo = "Trading split (automatic)"

// Split is one debit/credit leg of a transaction, booked to one account.
// Value is stated in the transaction currency; Quantity in the account's
// native commodity. They differ only when the two commodities differ.
type Split struct {
	GUID          uuid.UUID
	TxGUID        uuid.UUID
	AccountGUID   uuid.UUID
	Memo          string
	Reconcile     ReconcileState
	ReconcileDate *time.Time
	Value         numeric.Amount
	Quantity      numeric.Amount
}

// Transaction groups at least two splits under a single currency and post
// date. A transaction whose splits do not balance is never persisted.
type Transaction struct {
	GUID         uuid.UUID
	CurrencyGUID uuid.UUID
	Num          string
	PostDate     time.Time
	EnterDate    time.Time
	Description  string
	Splits       []Split
}
