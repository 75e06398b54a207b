package costing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/shared"
)

// ErrCalculationRunning is returned when another calculate run holds
// the period lock.
var ErrCalculationRunning = errors.New("costing: calculation already running for period")

// SnapshotLoader yields the engine's input set for a period.
type SnapshotLoader interface {
	Load(ctx context.Context, period periods.Period) (Snapshot, error)
}

// PeriodReader is the slice of the fiscal period repository the costing
// service needs.
type PeriodReader interface {
	Get(ctx context.Context, id int64) (periods.Period, error)
}

type Service struct {
	logger  *slog.Logger
	periods PeriodReader
	loader  SnapshotLoader
	engine  *Engine
	results ResultRepository
	lock    *shared.PeriodLock
}

func NewService(logger *slog.Logger, periodRepo PeriodReader, loader SnapshotLoader, engine *Engine, results ResultRepository, lock *shared.PeriodLock) *Service {
	return &Service{
		logger:  logger,
		periods: periodRepo,
		loader:  loader,
		engine:  engine,
		results: results,
		lock:    lock,
	}
}

// Calculate runs the full roll-up and commits the results. It refuses
// closed periods before any write, and serialises with other calculate
// runs for the same period through the period lock.
func (s *Service) Calculate(ctx context.Context, periodID int64, productIDs []int64) (CalculationResult, error) {
	period, err := s.periods.Get(ctx, periodID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return CalculationResult{}, fmt.Errorf("%w: period %d", ErrNotFound, periodID)
		}
		return CalculationResult{}, err
	}
	if period.IsClosed() {
		return CalculationResult{}, fmt.Errorf("%w: period %s", shared.ErrPeriodClosed, period.Label())
	}

	release, acquired, err := s.lock.Acquire(ctx, periodID)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("acquire period lock: %w", err)
	}
	if !acquired {
		return CalculationResult{}, ErrCalculationRunning
	}
	defer release()

	snap, err := s.loader.Load(ctx, period)
	if err != nil {
		return CalculationResult{}, err
	}

	result := s.engine.Run(snap, productIDs)

	if err := s.results.UpsertCrudeProductCosts(ctx, result.CrudeProductCosts); err != nil {
		return CalculationResult{}, fmt.Errorf("persist crude product costs: %w", err)
	}
	if err := s.results.UpsertStandardCosts(ctx, result.ProductCosts); err != nil {
		return CalculationResult{}, fmt.Errorf("persist standard costs: %w", err)
	}
	return result, nil
}

// Simulate runs the identical pipeline against an in-memory overlay.
// Nothing is persisted and closed periods are allowed.
func (s *Service) Simulate(ctx context.Context, periodID int64, productIDs []int64, overrides Overrides) (CalculationResult, error) {
	period, err := s.periods.Get(ctx, periodID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return CalculationResult{}, fmt.Errorf("%w: period %d", ErrNotFound, periodID)
		}
		return CalculationResult{}, err
	}

	snap, err := s.loader.Load(ctx, period)
	if err != nil {
		return CalculationResult{}, err
	}

	result := s.engine.Run(snap.WithOverrides(overrides), productIDs)
	result.Simulated = true
	return result, nil
}

// Copy seeds a period with the standard costs of another, a common
// starting point before recalculating selected products.
func (s *Service) Copy(ctx context.Context, fromPeriodID, toPeriodID int64) (int, error) {
	if _, err := s.periods.Get(ctx, fromPeriodID); err != nil {
		return 0, fmt.Errorf("%w: period %d", ErrNotFound, fromPeriodID)
	}
	target, err := s.periods.Get(ctx, toPeriodID)
	if err != nil {
		return 0, fmt.Errorf("%w: period %d", ErrNotFound, toPeriodID)
	}
	if target.IsClosed() {
		return 0, fmt.Errorf("%w: period %s", shared.ErrPeriodClosed, target.Label())
	}
	copied, err := s.results.CopyStandardCosts(ctx, fromPeriodID, toPeriodID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("standard costs copied",
		slog.Int64("from_period_id", fromPeriodID),
		slog.Int64("to_period_id", toPeriodID),
		slog.Int("rows", copied))
	return copied, nil
}

func (s *Service) ListStandardCosts(ctx context.Context, periodID int64, productID *int64) ([]StandardCost, error) {
	return s.results.ListStandardCosts(ctx, periodID, productID)
}

func (s *Service) ListCrudeProductCosts(ctx context.Context, periodID int64, crudeProductID *int64) ([]CrudeProductStandardCost, error) {
	return s.results.ListCrudeProductCosts(ctx, periodID, crudeProductID)
}
