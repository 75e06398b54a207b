package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genka-erp/genka-erp/internal/actuals"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func row(productID int64, source string, total string) actuals.ActualCost {
	return actuals.ActualCost{
		ProductID:    productID,
		PeriodID:     7,
		SourceSystem: source,
		TotalCost:    dec(total),
	}
}

func TestReconcileMatchedWithinThreshold(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, actuals.SourceSCSystem, "500000"),
		row(10, actuals.SourceKanjyoBugyo, "500800"),
	}

	results := Reconcile(7, rows, DefaultThreshold)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusMatched, r.Status)
	require.NotNil(t, r.Difference)
	assert.True(t, r.Difference.Equal(dec("-800")), "got %s", r.Difference)
	require.NotNil(t, r.ValueA)
	require.NotNil(t, r.ValueB)
	assert.True(t, r.ValueA.Equal(dec("500000")))
	assert.True(t, r.ValueB.Equal(dec("500800")))
}

func TestReconcileExactThresholdMatches(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, actuals.SourceSCSystem, "501000"),
		row(10, actuals.SourceKanjyoBugyo, "500000"),
	}

	results := Reconcile(7, rows, DefaultThreshold)
	require.Len(t, results, 1)
	assert.Equal(t, StatusMatched, results[0].Status)
}

func TestReconcileDiscrepancyBeyondThreshold(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, actuals.SourceSCSystem, "500000"),
		row(10, actuals.SourceKanjyoBugyo, "503500"),
	}

	results := Reconcile(7, rows, DefaultThreshold)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusDiscrepancy, r.Status)
	require.NotNil(t, r.Difference)
	assert.True(t, r.Difference.Equal(dec("-3500")))
}

func TestReconcileUnmatchedOneSided(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, actuals.SourceSCSystem, "120000"),
		row(20, actuals.SourceKanjyoBugyo, "80000"),
	}

	results := Reconcile(7, rows, DefaultThreshold)
	require.Len(t, results, 2)

	scOnly := results[0]
	assert.Equal(t, int64(10), scOnly.EntityID)
	assert.Equal(t, StatusUnmatched, scOnly.Status)
	assert.Equal(t, "no accounting system data", scOnly.Notes)
	require.NotNil(t, scOnly.ValueA)
	assert.Nil(t, scOnly.ValueB)
	assert.Nil(t, scOnly.Difference)

	bugyoOnly := results[1]
	assert.Equal(t, int64(20), bugyoOnly.EntityID)
	assert.Equal(t, StatusUnmatched, bugyoOnly.Status)
	assert.Equal(t, "no costing system data", bugyoOnly.Notes)
	assert.Nil(t, bugyoOnly.ValueA)
	require.NotNil(t, bugyoOnly.ValueB)
}

func TestReconcileCustomThreshold(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, actuals.SourceSCSystem, "100000"),
		row(10, actuals.SourceKanjyoBugyo, "100200"),
	}

	results := Reconcile(7, rows, dec("100"))
	require.Len(t, results, 1)
	assert.Equal(t, StatusDiscrepancy, results[0].Status)
}

func TestReconcileIgnoresUnknownSources(t *testing.T) {
	rows := []actuals.ActualCost{
		row(10, "legacy_feed", "100000"),
	}

	results := Reconcile(7, rows, DefaultThreshold)
	assert.Empty(t, results)
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Status: StatusMatched},
		{Status: StatusMatched},
		{Status: StatusDiscrepancy},
		{Status: StatusUnmatched},
	}

	s := Summarize(7, results)
	assert.Equal(t, int64(7), s.PeriodID)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Matched)
	assert.Equal(t, 1, s.Discrepancy)
	assert.Equal(t, 1, s.Unmatched)
}
