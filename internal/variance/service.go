package variance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/costing"
	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/shared"
)

// StandardCostReader is the slice of the costing result store the
// analysis needs.
type StandardCostReader interface {
	ListStandardCosts(ctx context.Context, periodID int64, productID *int64) ([]costing.StandardCost, error)
}

// ActualCostReader is the slice of the actuals store the analysis needs.
type ActualCostReader interface {
	ListActualCosts(ctx context.Context, periodID int64, productID *int64) ([]actuals.ActualCost, error)
}

// PeriodReader resolves fiscal periods.
type PeriodReader interface {
	Get(ctx context.Context, id int64) (periods.Period, error)
}

// Service runs variance analysis and serves persisted records.
type Service struct {
	logger    *slog.Logger
	periods   PeriodReader
	standards StandardCostReader
	actualsIn ActualCostReader
	repo      Repository
}

func NewService(logger *slog.Logger, periodRepo PeriodReader, standards StandardCostReader, actualReader ActualCostReader, repo Repository) *Service {
	return &Service{
		logger:    logger,
		periods:   periodRepo,
		standards: standards,
		actualsIn: actualReader,
		repo:      repo,
	}
}

// Analyze compares standard against actual costs for every in-scope
// product and replaces the period's records. Products missing either
// side are skipped and counted, never fatal.
func (s *Service) Analyze(ctx context.Context, periodID int64, productIDs []int64, thresholdPercent *decimal.Decimal) (AnalysisResult, error) {
	if _, err := s.periods.Get(ctx, periodID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return AnalysisResult{}, fmt.Errorf("%w: period %d", ErrNotFound, periodID)
		}
		return AnalysisResult{}, err
	}

	threshold := DefaultThresholdPercent
	if thresholdPercent != nil {
		threshold = *thresholdPercent
	}

	standards, err := s.standards.ListStandardCosts(ctx, periodID, nil)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load standard costs: %w", err)
	}
	actualRows, err := s.actualsIn.ListActualCosts(ctx, periodID, nil)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("load actual costs: %w", err)
	}

	scope := map[int64]bool{}
	for _, id := range productIDs {
		scope[id] = true
	}
	inScope := func(id int64) bool {
		return len(scope) == 0 || scope[id]
	}

	standardByProduct := make(map[int64]costing.StandardCost, len(standards))
	for _, sc := range standards {
		if inScope(sc.ProductID) {
			standardByProduct[sc.ProductID] = sc
		}
	}
	// With rows from several source systems, the costing system's own
	// export wins; accounting rows only fill gaps.
	actualByProduct := make(map[int64]actuals.ActualCost, len(actualRows))
	for _, ac := range actualRows {
		if !inScope(ac.ProductID) {
			continue
		}
		if existing, ok := actualByProduct[ac.ProductID]; ok && existing.SourceSystem == actuals.SourceSCSystem {
			continue
		}
		actualByProduct[ac.ProductID] = ac
	}

	result := AnalysisResult{
		PeriodID:         periodID,
		ThresholdPercent: threshold,
		TotalStandard:    decimal.Zero,
		TotalActual:      decimal.Zero,
		TotalVariance:    decimal.Zero,
	}

	skipped := map[int64]bool{}
	for id := range standardByProduct {
		if _, ok := actualByProduct[id]; !ok {
			skipped[id] = true
		}
	}
	for id := range actualByProduct {
		if _, ok := standardByProduct[id]; !ok {
			skipped[id] = true
		}
	}
	for id := range skipped {
		result.SkippedProducts = append(result.SkippedProducts, id)
	}
	sort.Slice(result.SkippedProducts, func(i, j int) bool {
		return result.SkippedProducts[i] < result.SkippedProducts[j]
	})

	productOrder := make([]int64, 0, len(standardByProduct))
	for id := range standardByProduct {
		if _, ok := actualByProduct[id]; ok {
			productOrder = append(productOrder, id)
		}
	}
	sort.Slice(productOrder, func(i, j int) bool { return productOrder[i] < productOrder[j] })

	for _, id := range productOrder {
		records := Compare(standardByProduct[id], actualByProduct[id], threshold)
		result.Details = append(result.Details, records...)
		result.ProductsAnalyzed++
		result.TotalStandard = result.TotalStandard.Add(standardByProduct[id].TotalCost)
		result.TotalActual = result.TotalActual.Add(actualByProduct[id].TotalCost)
		for _, r := range records {
			if r.IsFlagged {
				result.FlaggedCount++
			}
		}
	}
	result.TotalVariance = result.TotalActual.Sub(result.TotalStandard)
	result.RecordsCreated = len(result.Details)

	if err := s.repo.ReplaceForPeriod(ctx, periodID, productIDs, result.Details); err != nil {
		return AnalysisResult{}, fmt.Errorf("persist variance records: %w", err)
	}

	s.logger.Info("variance analysis complete",
		slog.Int64("period_id", periodID),
		slog.Int("products_analyzed", result.ProductsAnalyzed),
		slog.Int("records_created", result.RecordsCreated),
		slog.Int("flagged", result.FlaggedCount))
	return result, nil
}

// Summary aggregates already-persisted records for a period.
func (s *Service) Summary(ctx context.Context, periodID int64) (SummaryReport, error) {
	records, err := s.repo.List(ctx, ListFilters{PeriodID: periodID})
	if err != nil {
		return SummaryReport{}, err
	}
	return Summarize(periodID, records), nil
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Record, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.repo.Get(ctx, id)
}

// UpdateReview applies a review-only mutation to one record.
func (s *Service) UpdateReview(ctx context.Context, id int64, update ReviewUpdate) (Record, error) {
	if err := s.repo.UpdateReview(ctx, id, update); err != nil {
		return Record{}, err
	}
	return s.repo.Get(ctx, id)
}
