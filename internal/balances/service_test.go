package balances

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/fxrates"
)

type fixture struct {
	accounts    []accounts.Account
	commodities []commodities.Commodity
	base        commodities.Commodity
	sums        []SplitSums
	rates       map[uuid.UUID]decimal.Decimal

	sumCalls  int
	rateCalls map[uuid.UUID]int
}

func (f *fixture) Tree(ctx context.Context) (*accounts.Tree, error) {
	return accounts.NewTree(f.accounts)
}

func (f *fixture) List(ctx context.Context) ([]commodities.Commodity, error) {
	return f.commodities, nil
}

func (f *fixture) Base(ctx context.Context) (commodities.Commodity, error) {
	return f.base, nil
}

func (f *fixture) SumSplits(ctx context.Context, accountGUIDs []uuid.UUID, from, to *time.Time) ([]SplitSums, error) {
	f.sumCalls++
	inScope := map[uuid.UUID]bool{}
	for _, guid := range accountGUIDs {
		inScope[guid] = true
	}
	var out []SplitSums
	for _, s := range f.sums {
		if inScope[s.AccountGUID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fixture) lookup(ctx context.Context, commodityGUID, currencyGUID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	if f.rateCalls == nil {
		f.rateCalls = map[uuid.UUID]int{}
	}
	f.rateCalls[commodityGUID]++
	rate, ok := f.rates[commodityGUID]
	if !ok {
		return decimal.Zero, fxrates.ErrRateUnavailable
	}
	return rate, nil
}

func currency(mnemonic string) commodities.Commodity {
	return commodities.Commodity{
		GUID:      uuid.New(),
		Namespace: commodities.NamespaceCurrency,
		Mnemonic:  mnemonic,
		Fullname:  mnemonic,
		Fraction:  100,
	}
}

func account(name string, typ accounts.Type, parent *uuid.UUID, cmdty commodities.Commodity) accounts.Account {
	return accounts.Account{GUID: uuid.New(), Name: name, Type: typ, ParentGUID: parent, CommodityGUID: cmdty.GUID}
}

func newFixture() (*fixture, accounts.Account, accounts.Account, accounts.Account, accounts.Account) {
	usd := currency("USD")
	root := accounts.Account{GUID: uuid.New(), Name: "Root", Type: accounts.TypeRoot, CommodityGUID: usd.GUID}
	assets := account("Assets", accounts.TypeAsset, &root.GUID, usd)
	bank := account("Bank", accounts.TypeAsset, &assets.GUID, usd)
	checking := account("Checking", accounts.TypeBank, &bank.GUID, usd)

	f := &fixture{
		accounts:    []accounts.Account{root, assets, bank, checking},
		commodities: []commodities.Commodity{usd},
		base:        usd,
		rates:       map[uuid.UUID]decimal.Decimal{},
	}
	return f, root, assets, bank, checking
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lineFor(t *testing.T, report Report, guid uuid.UUID) Line {
	t.Helper()
	for _, l := range report.Lines {
		if l.AccountGUID == guid {
			return l
		}
	}
	t.Fatalf("no line for account %s", guid)
	return Line{}
}

func TestReportFoldsChildrenIntoParents(t *testing.T) {
	f, root, assets, bank, checking := newFixture()
	// Direct splits on every level of a 3-level hierarchy.
	f.sums = []SplitSums{
		{AccountGUID: assets.GUID, CommodityGUID: f.base.GUID, Total: dec("10.00"), Period: dec("10.00")},
		{AccountGUID: bank.GUID, CommodityGUID: f.base.GUID, Total: dec("20.00"), Period: dec("20.00")},
		{AccountGUID: checking.GUID, CommodityGUID: f.base.GUID, Total: dec("30.50"), Period: dec("30.50")},
	}

	svc := NewService(f, f, f, f.lookup)
	report, err := svc.Report(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, root.GUID, report.RootGUID)
	require.Equal(t, "USD", report.Currency)
	require.Equal(t, 1, f.sumCalls, "one bulk read regardless of depth")

	require.True(t, lineFor(t, report, checking.GUID).TotalBalance.Equal(dec("30.50")))
	require.True(t, lineFor(t, report, bank.GUID).TotalBalance.Equal(dec("50.50")), "own splits plus child")
	require.True(t, lineFor(t, report, assets.GUID).TotalBalance.Equal(dec("60.50")))
	require.True(t, lineFor(t, report, root.GUID).TotalBalance.Equal(dec("60.50")))
}

func TestReportPeriodVersusTotal(t *testing.T) {
	f, _, _, _, checking := newFixture()
	// The repository already windows the period sum; splits posted before the
	// window contribute to total only.
	f.sums = []SplitSums{
		{AccountGUID: checking.GUID, CommodityGUID: f.base.GUID, Total: dec("250.00"), Period: decimal.Zero},
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	svc := NewService(f, f, f, f.lookup)
	report, err := svc.Report(context.Background(), Request{From: &from, To: &to})
	require.NoError(t, err)

	line := lineFor(t, report, checking.GUID)
	require.True(t, line.PeriodBalance.IsZero())
	require.True(t, line.TotalBalance.Equal(dec("250.00")))
}

func TestReportConvertsAndDedupesRateLookups(t *testing.T) {
	f, root, assets, bank, _ := newFixture()
	eur := currency("EUR")
	f.commodities = append(f.commodities, eur)
	f.rates[eur.GUID] = dec("1.10")

	f.sums = []SplitSums{
		{AccountGUID: assets.GUID, CommodityGUID: eur.GUID, Total: dec("100.00"), Period: dec("100.00")},
		{AccountGUID: bank.GUID, CommodityGUID: eur.GUID, Total: dec("50.00"), Period: dec("50.00")},
		{AccountGUID: bank.GUID, CommodityGUID: f.base.GUID, Total: dec("5.00"), Period: dec("5.00")},
	}

	svc := NewService(f, f, f, f.lookup)
	report, err := svc.Report(context.Background(), Request{})
	require.NoError(t, err)

	require.Equal(t, 1, f.rateCalls[eur.GUID], "one lookup per distinct commodity")
	require.Equal(t, 0, f.rateCalls[f.base.GUID], "base currency never hits the rate source")
	require.True(t, lineFor(t, report, root.GUID).TotalBalance.Equal(dec("170.00")), "150 EUR at 1.10 plus 5 USD")
}

func TestReportExcludesCommoditiesWithoutRates(t *testing.T) {
	f, root, _, _, checking := newFixture()
	shares := commodities.Commodity{GUID: uuid.New(), Namespace: "STOCK", Mnemonic: "ACME", Fullname: "Acme Corp", Fraction: 10000}
	f.commodities = append(f.commodities, shares)

	f.sums = []SplitSums{
		{AccountGUID: checking.GUID, CommodityGUID: f.base.GUID, Total: dec("40.00"), Period: dec("40.00")},
		{AccountGUID: checking.GUID, CommodityGUID: shares.GUID, Total: dec("15.0000"), Period: dec("15.0000")},
	}

	svc := NewService(f, f, f, f.lookup)
	report, err := svc.Report(context.Background(), Request{})
	require.NoError(t, err, "missing rate degrades to a partial result")
	require.Equal(t, []string{"ACME"}, report.ExcludedCommodities)
	require.True(t, lineFor(t, report, root.GUID).TotalBalance.Equal(dec("40.00")), "unconvertible commodity stays out of totals")
}

func TestReportResolvesRootByFullName(t *testing.T) {
	f, _, _, bank, checking := newFixture()
	f.sums = []SplitSums{
		{AccountGUID: checking.GUID, CommodityGUID: f.base.GUID, Total: dec("12.00"), Period: dec("12.00")},
	}

	svc := NewService(f, f, f, f.lookup)
	report, err := svc.Report(context.Background(), Request{Root: "Assets:Bank"})
	require.NoError(t, err)
	require.Equal(t, bank.GUID, report.RootGUID)
	require.Len(t, report.Lines, 2)
	require.Equal(t, 0, report.Lines[0].Depth, "depth is relative to the requested root")
	require.Equal(t, 1, report.Lines[1].Depth)
}
