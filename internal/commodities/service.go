package commodities

import (
	"context"
	"fmt"
)

// Service exposes commodity reference data plus the deployment's base
// currency, which is explicit configuration rather than ambient state so
// several books can share a process.
type Service struct {
	repo         Repository
	baseMnemonic string
}

func NewService(repo Repository, baseMnemonic string) *Service {
	return &Service{repo: repo, baseMnemonic: baseMnemonic}
}

func (s *Service) List(ctx context.Context) ([]Commodity, error) {
	return s.repo.List(ctx)
}

// Base resolves the configured reporting currency.
func (s *Service) Base(ctx context.Context) (Commodity, error) {
	c, err := s.repo.GetByMnemonic(ctx, NamespaceCurrency, s.baseMnemonic)
	if err != nil {
		return Commodity{}, fmt.Errorf("commodities: base currency %s: %w", s.baseMnemonic, err)
	}
	return c, nil
}
