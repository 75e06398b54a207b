package variance

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/costing"
	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/shared"
)

type stubPeriods struct{}

func (stubPeriods) Get(_ context.Context, id int64) (periods.Period, error) {
	if id != 1 {
		return periods.Period{}, shared.ErrNotFound
	}
	return periods.Period{ID: 1, Year: 38, Month: 7, Status: periods.StatusOpen}, nil
}

type stubStandards struct {
	rows []costing.StandardCost
}

func (s *stubStandards) ListStandardCosts(context.Context, int64, *int64) ([]costing.StandardCost, error) {
	return s.rows, nil
}

type stubActuals struct {
	rows []actuals.ActualCost
}

func (s *stubActuals) ListActualCosts(context.Context, int64, *int64) ([]actuals.ActualCost, error) {
	return s.rows, nil
}

type memoryRepo struct {
	records []Record
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Record, error) {
	var out []Record
	for _, r := range m.records {
		if r.PeriodID == filters.PeriodID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepo) ReplaceForPeriod(_ context.Context, periodID int64, productIDs []int64, records []Record) error {
	scope := map[int64]bool{}
	for _, id := range productIDs {
		scope[id] = true
	}
	var kept []Record
	for _, r := range m.records {
		if r.PeriodID == periodID && (len(scope) == 0 || scope[r.ProductID]) {
			continue
		}
		kept = append(kept, r)
	}
	for i, r := range records {
		r.ID = int64(len(kept) + i + 1)
		r.PeriodID = periodID
		kept = append(kept, r)
	}
	m.records = kept
	return nil
}

func (m *memoryRepo) UpdateReview(_ context.Context, id int64, update ReviewUpdate) error {
	for i, r := range m.records {
		if r.ID != id {
			continue
		}
		if update.IsFlagged != nil {
			r.IsFlagged = *update.IsFlagged
		}
		if update.FlagReason != nil {
			r.FlagReason = *update.FlagReason
		}
		if update.Notes != nil {
			r.Notes = *update.Notes
		}
		m.records[i] = r
		return nil
	}
	return ErrNotFound
}

func newTestService(standards []costing.StandardCost, actualRows []actuals.ActualCost, repo *memoryRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, stubPeriods{}, &stubStandards{rows: standards}, &stubActuals{rows: actualRows}, repo)
}

func standardRow(productID int64, labor string) costing.StandardCost {
	return costing.StandardCost{ProductID: productID, PeriodID: 1, LaborCost: dec(labor), TotalCost: dec(labor)}
}

func actualRow(productID int64, labor string) actuals.ActualCost {
	return actuals.ActualCost{ProductID: productID, PeriodID: 1, LaborCost: dec(labor), TotalCost: dec(labor)}
}

func TestAnalyzePersistsAndCounts(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(
		[]costing.StandardCost{standardRow(1, "100000"), standardRow(2, "50000")},
		[]actuals.ActualCost{actualRow(1, "94000"), actualRow(2, "50500")},
		repo,
	)

	result, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProductsAnalyzed)
	assert.Equal(t, 2*len(costing.Elements()), result.RecordsCreated)
	assert.True(t, result.TotalVariance.Equal(dec("-5500")))
	assert.Len(t, repo.records, result.RecordsCreated)
	assert.Positive(t, result.FlaggedCount, "the -6% labor variance is flagged")
}

func TestAnalyzeSkipsProductsMissingEitherSide(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(
		[]costing.StandardCost{standardRow(1, "1000"), standardRow(2, "1000")},
		[]actuals.ActualCost{actualRow(1, "1000"), actualRow(3, "1000")},
		repo,
	)

	result, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ProductsAnalyzed)
	assert.ElementsMatch(t, []int64{2, 3}, result.SkippedProducts)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(
		[]costing.StandardCost{standardRow(1, "1000")},
		[]actuals.ActualCost{actualRow(1, "1100")},
		repo,
	)

	first, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first.RecordsCreated, second.RecordsCreated)
	assert.Len(t, repo.records, second.RecordsCreated, "re-analysis replaces, never appends")
}

func TestAnalyzeUnknownPeriod(t *testing.T) {
	svc := newTestService(nil, nil, &memoryRepo{})
	_, err := svc.Analyze(context.Background(), 99, nil, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReviewMutatesReviewStateOnly(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(
		[]costing.StandardCost{standardRow(1, "1000")},
		[]actuals.ActualCost{actualRow(1, "1200")},
		repo,
	)
	_, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	target := repo.records[0]
	notes := "volume driven, reviewed"
	flagged := false
	updated, err := svc.UpdateReview(context.Background(), target.ID, ReviewUpdate{
		IsFlagged: &flagged,
		Notes:     &notes,
	})
	require.NoError(t, err)

	assert.False(t, updated.IsFlagged)
	assert.Equal(t, notes, updated.Notes)
	assert.True(t, updated.StandardAmount.Equal(target.StandardAmount), "amounts never change in review")
}

func TestSummaryAggregatesPersistedRecords(t *testing.T) {
	repo := &memoryRepo{}
	svc := newTestService(
		[]costing.StandardCost{standardRow(1, "100000")},
		[]actuals.ActualCost{actualRow(1, "94000")},
		repo,
	)
	_, err := svc.Analyze(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	report, err := svc.Summary(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, report.TotalVariance.Equal(dec("-6000")))
	assert.True(t, report.IsFavorable)
}
