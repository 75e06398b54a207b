package costing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/shared"
)

type stubPeriods struct {
	byID map[int64]periods.Period
}

func (s *stubPeriods) Get(_ context.Context, id int64) (periods.Period, error) {
	p, ok := s.byID[id]
	if !ok {
		return periods.Period{}, shared.ErrNotFound
	}
	return p, nil
}

type stubLoader struct {
	snap Snapshot
}

func (s *stubLoader) Load(_ context.Context, period periods.Period) (Snapshot, error) {
	snap := s.snap
	snap.PeriodID = period.ID
	return snap, nil
}

type recordingResults struct {
	crudeUpserts   int
	productUpserts int
}

func (r *recordingResults) UpsertCrudeProductCosts(_ context.Context, rows []CrudeProductStandardCost) error {
	r.crudeUpserts += len(rows)
	return nil
}

func (r *recordingResults) UpsertStandardCosts(_ context.Context, rows []StandardCost) error {
	r.productUpserts += len(rows)
	return nil
}

func (r *recordingResults) ListCrudeProductCosts(context.Context, int64, *int64) ([]CrudeProductStandardCost, error) {
	return nil, nil
}

func (r *recordingResults) ListStandardCosts(context.Context, int64, *int64) ([]StandardCost, error) {
	return nil, nil
}

func (r *recordingResults) CopyStandardCosts(context.Context, int64, int64) (int, error) {
	return 0, nil
}

func newTestService(periodStatus periods.Status, results *recordingResults) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	periodRepo := &stubPeriods{byID: map[int64]periods.Period{
		1: {ID: 1, Year: 38, Month: 7, Status: periodStatus},
	}}
	loader := &stubLoader{snap: stage2Snapshot()}
	return NewService(logger, periodRepo, loader, testEngine(), results, nil)
}

func TestCalculatePersistsResults(t *testing.T) {
	results := &recordingResults{}
	svc := newTestService(periods.StatusOpen, results)

	result, err := svc.Calculate(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.False(t, result.Simulated)
	assert.Equal(t, 1, result.CrudeProductsCalculated)
	assert.Equal(t, 1, result.ProductsCalculated)
	assert.Equal(t, 1, results.crudeUpserts)
	assert.Equal(t, 1, results.productUpserts)
}

func TestCalculateRefusesClosedPeriod(t *testing.T) {
	results := &recordingResults{}
	svc := newTestService(periods.StatusClosed, results)

	_, err := svc.Calculate(context.Background(), 1, nil)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
	assert.Zero(t, results.crudeUpserts, "nothing persisted before the state check")
	assert.Zero(t, results.productUpserts)
}

func TestSimulateOnClosedPeriodSucceedsWithoutWrites(t *testing.T) {
	results := &recordingResults{}
	svc := newTestService(periods.StatusClosed, results)

	result, err := svc.Simulate(context.Background(), 1, nil, Overrides{})
	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.Equal(t, 1, result.ProductsCalculated)
	assert.Zero(t, results.crudeUpserts, "simulation never persists")
	assert.Zero(t, results.productUpserts)
}

func TestCalculateUnknownPeriod(t *testing.T) {
	svc := newTestService(periods.StatusOpen, &recordingResults{})

	_, err := svc.Calculate(context.Background(), 99, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSimulateAppliesOverrides(t *testing.T) {
	svc := newTestService(periods.StatusOpen, &recordingResults{})

	baseline, err := svc.Simulate(context.Background(), 1, nil, Overrides{})
	require.NoError(t, err)

	doubled, err := svc.Simulate(context.Background(), 1, nil, Overrides{
		MaterialPrices: map[int64]decimal.Decimal{100: dec("400")},
	})
	require.NoError(t, err)
	assert.True(t, doubled.TotalCrudeProductCost.GreaterThan(baseline.TotalCrudeProductCost))
}
