package budget

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

func (s *Service) Get(ctx context.Context, id int64) (CostBudget, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Find(ctx context.Context, costCenterID, periodID int64) (CostBudget, error) {
	return s.repo.Find(ctx, costCenterID, periodID)
}

func (s *Service) ListByPeriod(ctx context.Context, periodID int64) ([]CostBudget, error) {
	return s.repo.ListByPeriod(ctx, periodID)
}

func (s *Service) Create(ctx context.Context, b CostBudget) (CostBudget, error) {
	if err := validate(b); err != nil {
		return CostBudget{}, err
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Update(ctx context.Context, id int64, b CostBudget) error {
	if err := validate(b); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, b)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validate(b CostBudget) error {
	if b.CostCenterID <= 0 {
		return fmt.Errorf("%w: cost center required", ErrValidation)
	}
	if b.PeriodID <= 0 {
		return fmt.Errorf("%w: period required", ErrValidation)
	}
	if b.LaborBudget.IsNegative() || b.OverheadBudget.IsNegative() || b.OutsourcingBudget.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if b.ProductionHours != nil && b.ProductionHours.IsNegative() {
		return fmt.Errorf("%w: production hours must not be negative", ErrValidation)
	}
	return nil
}
