package accounts

import "github.com/google/uuid"

// Type enumerates GnuCash account categories.
type Type string

const (
	TypeRoot       Type = "ROOT"
	TypeAsset      Type = "ASSET"
	TypeBank       Type = "BANK"
	TypeCash       Type = "CASH"
	TypeCredit     Type = "CREDIT"
	TypeLiability  Type = "LIABILITY"
	TypeIncome     Type = "INCOME"
	TypeExpense    Type = "EXPENSE"
	TypeEquity     Type = "EQUITY"
	TypeStock      Type = "STOCK"
	TypeMutual     Type = "MUTUAL"
	TypeReceivable Type = "RECEIVABLE"
	TypePayable    Type = "PAYABLE"
	TypeTrading    Type = "TRADING"
)

// CreditBalance reports whether the type carries a credit-normal balance and
// therefore appears negative in raw storage. Presentation reversal is a
// display-layer concern; the engine never flips signs.
func (t Type) CreditBalance() bool {
	switch t {
	case TypeIncome, TypeLiability, TypeEquity, TypeCredit, TypePayable:
		return true
	default:
		return false
	}
}

// Account is a node in the chart of accounts. Every non-root account has
// exactly one parent; the forest is rooted at a single ROOT account per book.
type Account struct {
	GUID          uuid.UUID
	Name          string
	Type          Type
	ParentGUID    *uuid.UUID
	CommodityGUID uuid.UUID
	Code          string
	Description   string
	Hidden        bool
	Placeholder   bool
}
