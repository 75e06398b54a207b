package reconciliation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/periods"
)

type ActualCostReader interface {
	ListActualCosts(ctx context.Context, periodID int64, productID *int64) ([]actuals.ActualCost, error)
}

type PeriodReader interface {
	Get(ctx context.Context, id int64) (periods.Period, error)
}

type Service struct {
	logger  *slog.Logger
	periods PeriodReader
	actuals ActualCostReader
	repo    Repository
}

func NewService(logger *slog.Logger, periods PeriodReader, actuals ActualCostReader, repo Repository) *Service {
	return &Service{logger: logger, periods: periods, actuals: actuals, repo: repo}
}

// Run reconciles a period's actual costs across source systems and
// replaces any previous run for the period.
func (s *Service) Run(ctx context.Context, periodID int64, threshold *decimal.Decimal) ([]Result, error) {
	if _, err := s.periods.Get(ctx, periodID); err != nil {
		return nil, fmt.Errorf("%w: period %d", ErrNotFound, periodID)
	}

	th := DefaultThreshold
	if threshold != nil {
		th = *threshold
	}

	rows, err := s.actuals.ListActualCosts(ctx, periodID, nil)
	if err != nil {
		return nil, fmt.Errorf("load actual costs: %w", err)
	}

	results := Reconcile(periodID, rows, th)
	if err := s.repo.ReplaceForPeriod(ctx, periodID, results); err != nil {
		return nil, fmt.Errorf("persist reconciliation results: %w", err)
	}

	summary := Summarize(periodID, results)
	s.logger.Info("reconciliation run complete",
		"period_id", periodID,
		"threshold", th.String(),
		"total", summary.Total,
		"matched", summary.Matched,
		"discrepancy", summary.Discrepancy,
		"unmatched", summary.Unmatched)
	return results, nil
}

func (s *Service) List(ctx context.Context, periodID int64) ([]Result, error) {
	return s.repo.ListByPeriod(ctx, periodID)
}

func (s *Service) Summary(ctx context.Context, periodID int64) (Summary, error) {
	results, err := s.repo.ListByPeriod(ctx, periodID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(periodID, results), nil
}
