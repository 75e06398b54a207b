package allocation

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Rule, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]Rule, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListBySource(ctx context.Context, sourceCostCenterID int64) ([]Rule, error) {
	return s.repo.ListBySource(ctx, sourceCostCenterID)
}

func (s *Service) Create(ctx context.Context, rule Rule) (Rule, error) {
	if err := validate(rule); err != nil {
		return Rule{}, err
	}
	return s.repo.Create(ctx, rule)
}

func (s *Service) Update(ctx context.Context, id int64, rule Rule) error {
	if err := validate(rule); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, rule)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(rule Rule) error {
	if !rule.Basis.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBasis, rule.Basis)
	}
	if rule.SourceCostCenterID <= 0 {
		return fmt.Errorf("allocation: source cost center required")
	}
	if len(rule.Targets) == 0 {
		return ErrNoTargets
	}
	for _, t := range rule.Targets {
		if !t.Ratio.IsPositive() {
			return fmt.Errorf("allocation: target ratio must be positive")
		}
	}
	return nil
}
