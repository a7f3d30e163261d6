package ledger

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/numeric"
)

func currencyFixture(mnemonic string) commodities.Commodity {
	return commodities.Commodity{
		GUID:      uuid.New(),
		Namespace: commodities.NamespaceCurrency,
		Mnemonic:  mnemonic,
		Fraction:  100,
	}
}

func TestCheckBalanceAcceptsBalancedSplits(t *testing.T) {
	usd := currencyFixture("USD")
	checking := uuid.New()
	groceries := uuid.New()
	byAccount := map[uuid.UUID]commodities.Commodity{checking: usd, groceries: usd}

	splits := []Split{
		{AccountGUID: checking, Value: numeric.New(-4599, 100), Quantity: numeric.New(-4599, 100)},
		{AccountGUID: groceries, Value: numeric.New(4599, 100), Quantity: numeric.New(4599, 100)},
	}
	if err := CheckBalance(usd, splits, byAccount); err != nil {
		t.Fatalf("balanced splits rejected: %v", err)
	}
}

func TestCheckBalanceReportsResiduals(t *testing.T) {
	usd := currencyFixture("USD")
	checking := uuid.New()
	groceries := uuid.New()
	byAccount := map[uuid.UUID]commodities.Commodity{checking: usd, groceries: usd}

	splits := []Split{
		{AccountGUID: checking, Value: numeric.New(-5000, 100), Quantity: numeric.New(-5000, 100)},
		{AccountGUID: groceries, Value: numeric.New(4599, 100), Quantity: numeric.New(4599, 100)},
	}
	err := CheckBalance(usd, splits, byAccount)
	var imbalance *ImbalanceError
	if !errors.As(err, &imbalance) {
		t.Fatalf("expected ImbalanceError, got %v", err)
	}
	if imbalance.ValueResidual == nil || imbalance.ValueResidual.Amount.String() != "-4.01" {
		t.Fatalf("unexpected value residual: %+v", imbalance.ValueResidual)
	}
	if len(imbalance.Residuals) != 1 || imbalance.Residuals[0].Amount.String() != "-4.01" {
		t.Fatalf("unexpected quantity residuals: %+v", imbalance.Residuals)
	}
}

func TestCheckBalanceSumsAcrossScales(t *testing.T) {
	usd := currencyFixture("USD")
	a := uuid.New()
	b := uuid.New()
	byAccount := map[uuid.UUID]commodities.Commodity{a: usd, b: usd}

	// 1.50 recorded at /100 against -1.500 recorded at /1000 must cancel.
	splits := []Split{
		{AccountGUID: a, Value: numeric.New(150, 100), Quantity: numeric.New(150, 100)},
		{AccountGUID: b, Value: numeric.New(-1500, 1000), Quantity: numeric.New(-1500, 1000)},
	}
	if err := CheckBalance(usd, splits, byAccount); err != nil {
		t.Fatalf("cross-scale balanced splits rejected: %v", err)
	}
}

func TestCheckBalanceMissingCommodity(t *testing.T) {
	usd := currencyFixture("USD")
	known := uuid.New()
	unknown := uuid.New()
	byAccount := map[uuid.UUID]commodities.Commodity{known: usd}

	splits := []Split{
		{AccountGUID: known, Value: numeric.New(-100, 100), Quantity: numeric.New(-100, 100)},
		{AccountGUID: unknown, Value: numeric.New(100, 100), Quantity: numeric.New(100, 100)},
	}
	if err := CheckBalance(usd, splits, byAccount); !errors.Is(err, ErrMissingCommodity) {
		t.Fatalf("expected ErrMissingCommodity, got %v", err)
	}
}

func TestCheckBalanceRejectsSingleSplit(t *testing.T) {
	usd := currencyFixture("USD")
	splits := []Split{{AccountGUID: uuid.New(), Value: numeric.Zero(100), Quantity: numeric.Zero(100)}}
	if err := CheckBalance(usd, splits, nil); !errors.Is(err, ErrTooFewSplits) {
		t.Fatalf("expected ErrTooFewSplits, got %v", err)
	}
}
