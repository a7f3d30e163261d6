package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitInput is one caller-supplied leg of a posting. Value is stated in the
// transaction currency; Quantity, when omitted, defaults to the value amount
// expressed in the account's native commodity.
type SplitInput struct {
	AccountGUID string `json:"account_guid" validate:"required,uuid"`
	Value       string `json:"value" validate:"required"`
	Quantity    string `json:"quantity,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

// PostingInput groups the fields required to post a transaction.
type PostingInput struct {
	Currency    string       `json:"currency" validate:"required"`
	PostDate    string       `json:"post_date" validate:"required,datetime=2006-01-02"`
	Num         string       `json:"num,omitempty"`
	Description string       `json:"description,omitempty"`
	Splits      []SplitInput `json:"splits" validate:"min=2,dive"`
}

// Validate ensures the posting meets minimum criteria before any storage is
// touched.
func (in PostingInput) Validate() error {
	if in.Currency == "" {
		return errors.New("ledger: currency required")
	}
	if _, err := time.Parse("2006-01-02", in.PostDate); err != nil {
		return fmt.Errorf("ledger: invalid post date %q", in.PostDate)
	}
	if len(in.Splits) < 2 {
		return ErrTooFewSplits
	}
	for idx, s := range in.Splits {
		if _, err := uuid.Parse(s.AccountGUID); err != nil {
			return fmt.Errorf("ledger: split %d invalid account guid", idx)
		}
		if _, err := decimal.NewFromString(s.Value); err != nil {
			return fmt.Errorf("ledger: split %d invalid value %q", idx, s.Value)
		}
		if s.Quantity != "" {
			if _, err := decimal.NewFromString(s.Quantity); err != nil {
				return fmt.Errorf("ledger: split %d invalid quantity %q", idx, s.Quantity)
			}
		}
	}
	return nil
}

func (in PostingInput) postDate() time.Time {
	d, _ := time.Parse("2006-01-02", in.PostDate)
	return d
}
