package variance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/costing"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func findElement(t *testing.T, records []Record, element costing.CostElement) Record {
	t.Helper()
	for _, r := range records {
		if r.CostElement == element {
			return r
		}
	}
	t.Fatalf("no record for element %s", element)
	return Record{}
}

func TestCompareFavorableFlaggedVariance(t *testing.T) {
	standard := costing.StandardCost{
		ProductID: 1, PeriodID: 1,
		CrudeProductCost: dec("100000"),
	}
	actual := actuals.ActualCost{
		ProductID: 1, PeriodID: 1,
		CrudeProductCost: dec("94000"),
	}

	records := Compare(standard, actual, dec("5"))
	r := findElement(t, records, costing.ElementCrudeProduct)

	assert.True(t, r.VarianceAmount.Equal(dec("-6000")), "got %s", r.VarianceAmount)
	assert.True(t, r.VariancePercent.Equal(dec("-6")), "got %s", r.VariancePercent)
	assert.True(t, r.IsFavorable, "spending less than planned is favorable")
	assert.True(t, r.IsFlagged, "6% magnitude crosses a 5% threshold")
}

func TestCompareSignConventions(t *testing.T) {
	standard := costing.StandardCost{ProductID: 1, PeriodID: 1, LaborCost: dec("1000")}

	over := Compare(standard, actuals.ActualCost{LaborCost: dec("1100")}, dec("5"))
	r := findElement(t, over, costing.ElementLabor)
	assert.False(t, r.IsFavorable)
	assert.True(t, r.VarianceAmount.Equal(dec("100")))
	assert.True(t, r.IsFlagged, "10% over crosses the threshold")

	under := Compare(standard, actuals.ActualCost{LaborCost: dec("990")}, dec("5"))
	r = findElement(t, under, costing.ElementLabor)
	assert.True(t, r.IsFavorable)
	assert.False(t, r.IsFlagged, "1% stays under the threshold")
}

func TestCompareFlagEquivalence(t *testing.T) {
	standard := costing.StandardCost{ProductID: 1, PeriodID: 1, OverheadCost: dec("1000")}

	// Exactly at the threshold flags: abs(percent) >= threshold.
	at := Compare(standard, actuals.ActualCost{OverheadCost: dec("1050")}, dec("5"))
	assert.True(t, findElement(t, at, costing.ElementOverhead).IsFlagged)

	below := Compare(standard, actuals.ActualCost{OverheadCost: dec("1049")}, dec("5"))
	assert.False(t, findElement(t, below, costing.ElementOverhead).IsFlagged)
}

func TestCompareZeroStandard(t *testing.T) {
	standard := costing.StandardCost{ProductID: 1, PeriodID: 1}

	// Both zero: defined as zero percent, unflagged.
	clean := Compare(standard, actuals.ActualCost{}, dec("5"))
	r := findElement(t, clean, costing.ElementPackaging)
	assert.True(t, r.VariancePercent.IsZero())
	assert.False(t, r.IsFlagged)

	// Zero standard, nonzero actual: data error, flagged not crashed.
	dirty := Compare(standard, actuals.ActualCost{PackagingCost: dec("500")}, dec("5"))
	r = findElement(t, dirty, costing.ElementPackaging)
	assert.True(t, r.IsFlagged)
	assert.Equal(t, "standard amount is zero", r.FlagReason)
	assert.True(t, r.VariancePercent.IsZero())
}

func TestSummarizeSimpleMean(t *testing.T) {
	records := []Record{
		{CostElement: costing.ElementLabor, StandardAmount: dec("1000"), ActualAmount: dec("1100"), VarianceAmount: dec("100"), VariancePercent: dec("10")},
		{CostElement: costing.ElementLabor, StandardAmount: dec("100000"), ActualAmount: dec("98000"), VarianceAmount: dec("-2000"), VariancePercent: dec("-2"), IsFavorable: true},
	}

	report := Summarize(1, records)

	var labor ElementSummary
	for _, e := range report.Elements {
		if e.CostElement == costing.ElementLabor {
			labor = e
		}
	}
	require.Equal(t, 2, labor.RecordCount)
	// (10 + -2) / 2 = 4, ignoring the very different magnitudes.
	assert.True(t, labor.AverageVariancePercent.Equal(dec("4")), "got %s", labor.AverageVariancePercent)
	assert.True(t, labor.TotalVariance.Equal(dec("-1900")))
	assert.Equal(t, 1, labor.FavorableCount)
	assert.Equal(t, 1, labor.UnfavorableCount)

	assert.True(t, report.TotalVariance.Equal(dec("-1900")))
	assert.True(t, report.IsFavorable)
}

func TestSummarizeEmptyPeriod(t *testing.T) {
	report := Summarize(1, nil)
	require.Len(t, report.Elements, len(costing.Elements()))
	for _, e := range report.Elements {
		assert.Zero(t, e.RecordCount)
		assert.True(t, e.AverageVariancePercent.IsZero())
	}
	assert.False(t, report.IsFavorable, "zero variance is not favorable")
}
