package balances

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cashbook-dev/cashbook/internal/accounts"
	"github.com/cashbook-dev/cashbook/internal/commodities"
	"github.com/cashbook-dev/cashbook/internal/fxrates"
	"github.com/cashbook-dev/cashbook/internal/shared"
)

// AccountSource loads the chart of accounts as an arena tree.
type AccountSource interface {
	Tree(ctx context.Context) (*accounts.Tree, error)
}

// CommoditySource exposes commodity reference data and the reporting currency.
type CommoditySource interface {
	List(ctx context.Context) ([]commodities.Commodity, error)
	Base(ctx context.Context) (commodities.Commodity, error)
}

// Service folds split aggregates over the account tree. It only reads; report
// builds may run concurrently without coordination.
type Service struct {
	accounts    AccountSource
	commodities CommoditySource
	repo        Repository
	rates       fxrates.Lookup
	now         func() time.Time
}

func NewService(accountSrc AccountSource, commoditySrc CommoditySource, repo Repository, rates fxrates.Lookup) *Service {
	return &Service{
		accounts:    accountSrc,
		commodities: commoditySrc,
		repo:        repo,
		rates:       rates,
		now:         time.Now,
	}
}

// WithNow overrides the clock. Tests only.
func (s *Service) WithNow(now func() time.Time) { s.now = now }

// Report aggregates the requested subtree. The fold is post-order over the
// arena, so a parent's balance is its own direct splits plus the
// already-computed sums of its children. Conversion uses one rate lookup per
// distinct non-base commodity; a commodity with no rate is dropped from the
// converted figures and listed in ExcludedCommodities instead of failing the
// whole report. Rounding to two places happens at the response boundary, not
// here.
func (s *Service) Report(ctx context.Context, req Request) (Report, error) {
	tree, err := s.accounts.Tree(ctx)
	if err != nil {
		return Report{}, err
	}
	rootIdx, err := s.resolveRoot(tree, req.Root)
	if err != nil {
		return Report{}, err
	}

	base, err := s.commodities.Base(ctx)
	if err != nil {
		return Report{}, err
	}
	commodityList, err := s.commodities.List(ctx)
	if err != nil {
		return Report{}, err
	}
	commodityByGUID := make(map[uuid.UUID]commodities.Commodity, len(commodityList))
	for _, c := range commodityList {
		commodityByGUID[c.GUID] = c
	}

	order := tree.PostOrder(rootIdx)
	scope := make([]uuid.UUID, len(order))
	for i, idx := range order {
		scope[i] = tree.At(idx).GUID
	}

	sums, err := s.repo.SumSplits(ctx, scope, req.From, req.To)
	if err != nil {
		return Report{}, err
	}

	asOf := s.now().UTC()
	if req.To != nil {
		asOf = *req.To
	}
	rateByCommodity, excluded, err := s.resolveRates(ctx, sums, base, commodityByGUID, asOf)
	if err != nil {
		return Report{}, err
	}

	// Direct (own-splits) balances per account, already converted.
	directTotal := map[uuid.UUID]decimal.Decimal{}
	directPeriod := map[uuid.UUID]decimal.Decimal{}
	for _, sum := range sums {
		rate, ok := rateByCommodity[sum.CommodityGUID]
		if !ok {
			continue
		}
		directTotal[sum.AccountGUID] = directTotal[sum.AccountGUID].Add(sum.Total.Mul(rate))
		directPeriod[sum.AccountGUID] = directPeriod[sum.AccountGUID].Add(sum.Period.Mul(rate))
	}

	// Children precede parents in the order, so one forward pass folds the
	// subtree sums upward.
	totalByIdx := make(map[int]decimal.Decimal, len(order))
	periodByIdx := make(map[int]decimal.Decimal, len(order))
	for _, idx := range order {
		guid := tree.At(idx).GUID
		total := directTotal[guid]
		period := directPeriod[guid]
		for _, child := range tree.Children(idx) {
			total = total.Add(totalByIdx[child])
			period = period.Add(periodByIdx[child])
		}
		totalByIdx[idx] = total
		periodByIdx[idx] = period
	}

	report := Report{
		RootGUID:            tree.At(rootIdx).GUID,
		RootName:            tree.FullName(rootIdx),
		Currency:            base.Mnemonic,
		From:                req.From,
		To:                  req.To,
		GeneratedAt:         s.now().UTC(),
		ExcludedCommodities: excluded,
	}
	rootDepth := tree.Depth(rootIdx)
	s.appendLines(&report, tree, rootIdx, rootDepth, commodityByGUID, totalByIdx, periodByIdx)
	return report, nil
}

// appendLines emits the subtree in display order, parents before children.
func (s *Service) appendLines(report *Report, tree *accounts.Tree, idx, rootDepth int, commodityByGUID map[uuid.UUID]commodities.Commodity, totalByIdx, periodByIdx map[int]decimal.Decimal) {
	a := tree.At(idx)
	mnemonic := ""
	if c, ok := commodityByGUID[a.CommodityGUID]; ok {
		mnemonic = c.Mnemonic
	}
	report.Lines = append(report.Lines, Line{
		AccountGUID:   a.GUID,
		Name:          a.Name,
		FullName:      tree.FullName(idx),
		Type:          a.Type,
		Depth:         tree.Depth(idx) - rootDepth,
		Commodity:     mnemonic,
		CreditBalance: a.Type.CreditBalance(),
		TotalBalance:  totalByIdx[idx],
		PeriodBalance: periodByIdx[idx],
	})
	for _, child := range tree.Children(idx) {
		s.appendLines(report, tree, child, rootDepth, commodityByGUID, totalByIdx, periodByIdx)
	}
}

// resolveRates fetches one base-currency rate per distinct commodity observed
// in the sums. The base currency itself converts at 1. Missing rates collect
// into the excluded list.
func (s *Service) resolveRates(ctx context.Context, sums []SplitSums, base commodities.Commodity, commodityByGUID map[uuid.UUID]commodities.Commodity, asOf time.Time) (map[uuid.UUID]decimal.Decimal, []string, error) {
	rates := map[uuid.UUID]decimal.Decimal{base.GUID: decimal.NewFromInt(1)}
	var excluded []string
	seen := map[uuid.UUID]bool{base.GUID: true}

	for _, sum := range sums {
		if seen[sum.CommodityGUID] {
			continue
		}
		seen[sum.CommodityGUID] = true

		rate, err := s.rates(ctx, sum.CommodityGUID, base.GUID, asOf)
		if err != nil {
			if errors.Is(err, fxrates.ErrRateUnavailable) {
				name := sum.CommodityGUID.String()
				if c, ok := commodityByGUID[sum.CommodityGUID]; ok {
					name = c.Mnemonic
				}
				excluded = append(excluded, name)
				continue
			}
			return nil, nil, fmt.Errorf("balances: rate for %s: %w", sum.CommodityGUID, err)
		}
		rates[sum.CommodityGUID] = rate
	}
	sort.Strings(excluded)
	return rates, excluded, nil
}

func (s *Service) resolveRoot(tree *accounts.Tree, root string) (int, error) {
	if root == "" {
		idx, ok := tree.Root()
		if !ok {
			return -1, shared.ErrNotFound
		}
		return idx, nil
	}
	if guid, err := uuid.Parse(root); err == nil {
		if idx, ok := tree.Lookup(guid); ok {
			return idx, nil
		}
		return -1, shared.ErrNotFound
	}
	for i := 0; i < tree.Len(); i++ {
		if tree.FullName(i) == root {
			return i, nil
		}
	}
	return -1, shared.ErrNotFound
}
