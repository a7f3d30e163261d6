// Package balances aggregates account subtrees into reporting-currency
// balances. Reads are bulk and snapshot-consistent; conversion happens once
// per distinct commodity and missing rates degrade to a partial report.
package balances

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashbook-dev/cashbook/internal/accounts"
)

// Line is one account's row in a report. Balances carry the raw storage sign:
// credit-normal accounts stay negative here and any presentation flip belongs
// to the display layer.
type Line struct {
	AccountGUID   uuid.UUID       `json:"account_guid"`
	Name          string          `json:"name"`
	FullName      string          `json:"full_name"`
	Type          accounts.Type   `json:"type"`
	Depth         int             `json:"depth"`
	Commodity     string          `json:"commodity"`
	CreditBalance bool            `json:"credit_balance"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	PeriodBalance decimal.Decimal `json:"period_balance"`
}

// Report is a converted subtree aggregation. ExcludedCommodities lists the
// mnemonics whose splits were left out of the converted figures because no
// exchange rate could be resolved.
type Report struct {
	RootGUID            uuid.UUID  `json:"root_guid"`
	RootName            string     `json:"root_name"`
	Currency            string     `json:"currency"`
	From                *time.Time `json:"from,omitempty"`
	To                  *time.Time `json:"to,omitempty"`
	GeneratedAt         time.Time  `json:"generated_at"`
	Lines               []Line     `json:"lines"`
	ExcludedCommodities []string   `json:"excluded_commodities,omitempty"`
}

// Request selects the subtree and window to aggregate. Root accepts an
// account GUID or a colon-separated full name; empty means the book root.
// Nil From/To leave that side of the window open.
type Request struct {
	Root string
	From *time.Time
	To   *time.Time
}
