package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestByQuantityProportional(t *testing.T) {
	shares := ByQuantity(dec("1000"), map[int64]decimal.Decimal{
		1: dec("30"),
		2: dec("70"),
	})
	require.Len(t, shares, 2)
	assert.True(t, shares[0].Amount.Equal(dec("300")), "got %s", shares[0].Amount)
	assert.True(t, shares[1].Amount.Equal(dec("700")), "got %s", shares[1].Amount)
}

func TestByQuantityLastTakesRemainder(t *testing.T) {
	total := dec("100")
	shares := ByQuantity(total, map[int64]decimal.Decimal{
		1: dec("1"),
		2: dec("1"),
		3: dec("1"),
	})
	require.Len(t, shares, 3)

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	assert.True(t, sum.Equal(total), "shares sum to %s, want %s", sum, total)
	assert.True(t, shares[0].Amount.Equal(dec("33.3333")))
	assert.True(t, shares[2].Amount.Equal(dec("33.3334")))
}

func TestByQuantityZeroSum(t *testing.T) {
	shares := ByQuantity(dec("500"), map[int64]decimal.Decimal{
		1: decimal.Zero,
		2: decimal.Zero,
	})
	require.Len(t, shares, 2)
	for _, s := range shares {
		assert.True(t, s.Amount.IsZero())
	}
}

func TestByRatioAppliesAsGiven(t *testing.T) {
	rule := Rule{
		ID: 7,
		Targets: []Target{
			{TargetCostCenterID: 1, Ratio: dec("0.6")},
			{TargetCostCenterID: 2, Ratio: dec("0.3")},
		},
	}
	amounts, warnings := ByRatio(dec("1000"), rule)
	assert.True(t, amounts[1].Equal(dec("600")))
	assert.True(t, amounts[2].Equal(dec("300")))
	require.Len(t, warnings, 1, "ratios summing to 0.9 must warn")
	assert.Equal(t, int64(7), warnings[0].RuleID)
}

func TestByRatioNoWarningWhenRatiosSumToOne(t *testing.T) {
	rule := Rule{
		Targets: []Target{
			{TargetCostCenterID: 1, Ratio: dec("0.5")},
			{TargetCostCenterID: 2, Ratio: dec("0.5")},
		},
	}
	_, warnings := ByRatio(dec("1000"), rule)
	assert.Empty(t, warnings)
}

func TestMatchPrefersExactElement(t *testing.T) {
	rules := []Rule{
		{ID: 1, SourceCostCenterID: 5, CostElement: "", Basis: BasisCrudeQuantity, Priority: 1, IsActive: true},
		{ID: 2, SourceCostCenterID: 5, CostElement: "labor", Basis: BasisWeightBased, Priority: 9, IsActive: true},
	}

	rule, ok := Match(rules, 5, "labor")
	require.True(t, ok)
	assert.Equal(t, int64(2), rule.ID, "exact element outranks wildcard despite priority")

	rule, ok = Match(rules, 5, "overhead")
	require.True(t, ok)
	assert.Equal(t, int64(1), rule.ID)
}

func TestMatchPriorityAndActivity(t *testing.T) {
	rules := []Rule{
		{ID: 1, SourceCostCenterID: 5, Priority: 2, IsActive: true},
		{ID: 2, SourceCostCenterID: 5, Priority: 1, IsActive: false},
		{ID: 3, SourceCostCenterID: 5, Priority: 3, IsActive: true},
		{ID: 4, SourceCostCenterID: 6, Priority: 0, IsActive: true},
	}

	rule, ok := Match(rules, 5, "labor")
	require.True(t, ok)
	assert.Equal(t, int64(1), rule.ID)

	_, ok = Match(rules, 9, "labor")
	assert.False(t, ok)
}

func TestEffectiveBasisFallback(t *testing.T) {
	assert.Equal(t, BasisRawMaterialQuantity, EffectiveBasis(BasisProductionHours, false))
	assert.Equal(t, BasisProductionHours, EffectiveBasis(BasisProductionHours, true))
	assert.Equal(t, BasisCrudeQuantity, EffectiveBasis(BasisCrudeQuantity, false))
}
