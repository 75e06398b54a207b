package actuals

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

func (s *Service) ListActualCosts(ctx context.Context, periodID int64, productID *int64) ([]ActualCost, error) {
	return s.repo.ListActualCosts(ctx, periodID, productID)
}

func (s *Service) ListCrudeProductActualCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductActualCost, error) {
	return s.repo.ListCrudeProductActualCosts(ctx, periodID, crudeProductID)
}

// Record upserts a single manually entered actual cost row.
func (s *Service) Record(ctx context.Context, cost ActualCost) error {
	if cost.ProductID <= 0 || cost.PeriodID <= 0 {
		return fmt.Errorf("%w: product and period required", ErrInvalidImport)
	}
	if cost.TotalCost.IsZero() {
		cost.TotalCost = cost.Sum()
	}
	return s.repo.UpsertActualCosts(ctx, []ActualCost{cost})
}

// RecordCrudeProduct upserts a single crude product actual cost row.
func (s *Service) RecordCrudeProduct(ctx context.Context, cost CrudeProductActualCost) error {
	if cost.CrudeProductID <= 0 || cost.PeriodID <= 0 {
		return fmt.Errorf("%w: crude product and period required", ErrInvalidImport)
	}
	if cost.TotalCost.IsZero() {
		cost.TotalCost = cost.MaterialCost.Add(cost.LaborCost).Add(cost.OverheadCost).Add(cost.PriorProcessCost)
	}
	return s.repo.UpsertCrudeProductActualCosts(ctx, []CrudeProductActualCost{cost})
}
