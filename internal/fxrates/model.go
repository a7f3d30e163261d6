// Package fxrates resolves commodity prices from the GnuCash price table.
// The engine treats a missing rate as "conversion unavailable", never as a
// hard failure; callers exclude the commodity from converted totals instead.
package fxrates

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrRateUnavailable indicates no price row exists for the commodity pair.
var ErrRateUnavailable = errors.New("fxrates: no rate available")

// Rate is one resolved exchange rate: the value of one unit of Commodity
// expressed in Currency as of Date.
type Rate struct {
	CommodityGUID uuid.UUID       `json:"commodity_guid"`
	CurrencyGUID  uuid.UUID       `json:"currency_guid"`
	Date          time.Time       `json:"date"`
	Source        string          `json:"source"`
	Value         decimal.Decimal `json:"value"`
}
