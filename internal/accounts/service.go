package accounts

import "context"

// Service builds in-memory views over the chart of accounts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// Tree loads the whole chart and indexes it as an arena.
func (s *Service) Tree(ctx context.Context) (*Tree, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewTree(list)
}

func (s *Service) GetByFullName(ctx context.Context, fullName string) (Account, error) {
	return s.repo.GetByFullName(ctx, fullName)
}
