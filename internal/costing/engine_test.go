package costing

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func testEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)), 2)
}

// baseSnapshot builds a minimal Stage 1 world: material "Apple" at
// ¥200/kg feeding crude product 10 through a single-line recipe.
func baseSnapshot(lossRate string) Snapshot {
	one := decimal.NewFromInt(1)
	return Snapshot{
		PeriodID: 1,
		Materials: map[int64]materials.Material{
			100: {ID: 100, Code: "M-APPLE", Name: "Apple", StandardUnitPrice: dec("200"), IsActive: true},
		},
		CrudeProducts: map[int64]crudeproducts.CrudeProduct{
			10: {ID: 10, Code: "C-10", IsActive: true},
		},
		Products: map[int64]products.Product{},
		CrudeBOMs: map[int64]bom.Header{
			10: {
				ID: 1, OutputID: 10, BomType: bom.TypeRawMaterialProcess,
				YieldRate: one, BatchSize: ptr(dec("10")),
				Lines: []bom.Line{
					{Input: bom.MaterialRef(100), Quantity: dec("10"), LossRate: dec(lossRate)},
				},
			},
		},
		ProductBOMs: map[int64]bom.Header{},
	}
}

func TestStage1MaterialCostWithoutLoss(t *testing.T) {
	result := testEngine().Run(baseSnapshot("0"), nil)

	require.Len(t, result.CrudeProductCosts, 1)
	cost := result.CrudeProductCosts[0]
	assert.True(t, cost.MaterialCost.Equal(dec("2000")), "got %s", cost.MaterialCost)
	assert.Equal(t, 1, result.CrudeProductsCalculated)
	assert.Empty(t, result.Errors)
}

func TestStage1LossRateInflatesRequiredInput(t *testing.T) {
	result := testEngine().Run(baseSnapshot("0.2"), nil)

	require.Len(t, result.CrudeProductCosts, 1)
	// 10kg / (1 - 0.2) = 12.5kg at ¥200/kg.
	assert.True(t, result.CrudeProductCosts[0].MaterialCost.Equal(dec("2500")),
		"got %s", result.CrudeProductCosts[0].MaterialCost)
}

func TestStage1TotalsAreExactSums(t *testing.T) {
	snap := baseSnapshot("0")
	snap.ManufacturingCenterID = 1
	snap.ManufacturingBudget = &budget.CostBudget{
		CostCenterID: 1, PeriodID: 1,
		LaborBudget:    dec("500"),
		OverheadBudget: dec("300"),
	}

	result := testEngine().Run(snap, nil)
	require.Len(t, result.CrudeProductCosts, 1)
	cost := result.CrudeProductCosts[0]

	sum := cost.MaterialCost.Add(cost.LaborCost).Add(cost.OverheadCost).Add(cost.PriorProcessCost)
	assert.True(t, cost.TotalCost.Equal(sum))
	assert.True(t, cost.LaborCost.Equal(dec("500")), "sole crude product takes the whole budget")
	assert.True(t, cost.OverheadCost.Equal(dec("300")))

	// unit_cost × standard_quantity reproduces total within rounding.
	back := cost.UnitCost.Mul(cost.StandardQuantity)
	assert.True(t, cost.TotalCost.Sub(back).Abs().LessThanOrEqual(decimal.NewFromInt(1)))
}

// stage2Snapshot layers a finished product over the crude world:
// product 20 consumes 5kg of crude 10 plus one bottle of packaging.
func stage2Snapshot() Snapshot {
	one := decimal.NewFromInt(1)
	snap := baseSnapshot("0")
	// Crude standard cost comes out at ¥120,000 total over 1,000kg.
	snap.CrudeBOMs[10] = bom.Header{
		ID: 1, OutputID: 10, BomType: bom.TypeRawMaterialProcess,
		YieldRate: one, BatchSize: ptr(dec("1000")),
		Lines: []bom.Line{
			{Input: bom.MaterialRef(100), Quantity: dec("600"), LossRate: dec("0")},
		},
	}
	snap.Materials[101] = materials.Material{ID: 101, Code: "M-BOTTLE", Name: "Bottle", StandardUnitPrice: dec("50"), IsActive: true}
	snap.Products[20] = products.Product{
		ID: 20, Code: "P-20", ProductType: products.TypeInHouseManufacturing,
		StandardLotSize: dec("100"), IsActive: true,
	}
	snap.ProductBOMs = map[int64]bom.Header{
		20: {
			ID: 2, OutputID: 20, BomType: bom.TypeProductProcess,
			YieldRate: one,
			Lines: []bom.Line{
				{Input: bom.CrudeProductRef(10), Quantity: dec("5"), LossRate: dec("0")},
				{Input: bom.MaterialRef(101), Quantity: dec("1"), LossRate: dec("0")},
			},
		},
	}
	return snap
}

func TestStage2ConsumesStage1UnitCost(t *testing.T) {
	result := testEngine().Run(stage2Snapshot(), nil)

	require.Len(t, result.CrudeProductCosts, 1)
	crude := result.CrudeProductCosts[0]
	assert.True(t, crude.UnitCost.Equal(dec("120")), "got %s", crude.UnitCost)

	require.Len(t, result.ProductCosts, 1)
	product := result.ProductCosts[0]
	assert.True(t, product.CrudeProductCost.Equal(dec("600")), "got %s", product.CrudeProductCost)
	assert.True(t, product.PackagingCost.Equal(dec("50")))

	sum := product.CrudeProductCost.Add(product.PackagingCost).Add(product.LaborCost).Add(product.OverheadCost).Add(product.OutsourcingCost)
	assert.True(t, product.TotalCost.Equal(sum))
	assert.True(t, product.LotSize.Equal(dec("100")), "falls back to standard lot size without a batch size")
}

func TestOutsourcingOnlyForOutsourcedTypes(t *testing.T) {
	snap := stage2Snapshot()
	snap.ProductCenterID = 2
	snap.ProductBudget = &budget.CostBudget{
		CostCenterID: 2, PeriodID: 1,
		OutsourcingBudget: dec("9000"),
	}

	result := testEngine().Run(snap, nil)
	require.Len(t, result.ProductCosts, 1)
	assert.True(t, result.ProductCosts[0].OutsourcingCost.IsZero(), "in-house product carries no outsourcing cost")

	outsourced := snap.Products[20]
	outsourced.ProductType = products.TypeOutsourced
	snap.Products[20] = outsourced

	result = testEngine().Run(snap, nil)
	require.Len(t, result.ProductCosts, 1)
	assert.True(t, result.ProductCosts[0].OutsourcingCost.Equal(dec("9000")))
}

func TestRunIsIdempotent(t *testing.T) {
	snap := stage2Snapshot()
	first := testEngine().Run(snap, nil)
	second := testEngine().Run(snap, nil)

	require.Equal(t, len(first.ProductCosts), len(second.ProductCosts))
	for i := range first.ProductCosts {
		a, b := first.ProductCosts[i], second.ProductCosts[i]
		assert.True(t, a.TotalCost.Equal(b.TotalCost))
		assert.True(t, a.UnitCost.Equal(b.UnitCost))
	}
	assert.True(t, first.TotalProductCost.Equal(second.TotalProductCost))
	assert.True(t, first.TotalCrudeProductCost.Equal(second.TotalCrudeProductCost))
}

func TestBlendComputedAfterSources(t *testing.T) {
	one := decimal.NewFromInt(1)
	snap := baseSnapshot("0")
	snap.CrudeProducts[11] = crudeproducts.CrudeProduct{
		ID: 11, Code: "C-11", IsActive: true,
		IsBlend: true, BlendSourceIDs: []int64{10},
	}
	snap.CrudeBOMs[11] = bom.Header{
		ID: 3, OutputID: 11, BomType: bom.TypeRawMaterialProcess,
		YieldRate: one, BatchSize: ptr(dec("4")),
		Lines: []bom.Line{
			{Input: bom.CrudeProductRef(10), Quantity: dec("4"), LossRate: dec("0")},
		},
	}

	result := testEngine().Run(snap, nil)
	require.Len(t, result.CrudeProductCosts, 2)
	assert.Empty(t, result.Errors)

	var blend CrudeProductStandardCost
	for _, c := range result.CrudeProductCosts {
		if c.CrudeProductID == 11 {
			blend = c
		}
	}
	// Source unit cost ¥200/kg; 4kg consumed.
	assert.True(t, blend.PriorProcessCost.Equal(dec("800")), "got %s", blend.PriorProcessCost)
	assert.True(t, blend.MaterialCost.IsZero())
}

func TestBlendCycleIsConfigurationError(t *testing.T) {
	one := decimal.NewFromInt(1)
	snap := baseSnapshot("0")
	snap.CrudeProducts[11] = crudeproducts.CrudeProduct{ID: 11, Code: "C-11", IsActive: true, IsBlend: true, BlendSourceIDs: []int64{12}}
	snap.CrudeProducts[12] = crudeproducts.CrudeProduct{ID: 12, Code: "C-12", IsActive: true, IsBlend: true, BlendSourceIDs: []int64{11}}
	for _, id := range []int64{11, 12} {
		snap.CrudeBOMs[id] = bom.Header{
			ID: id, OutputID: id, BomType: bom.TypeRawMaterialProcess,
			YieldRate: one, BatchSize: ptr(dec("1")),
			Lines: []bom.Line{
				{Input: bom.MaterialRef(100), Quantity: dec("1"), LossRate: dec("0")},
			},
		}
	}

	result := testEngine().Run(snap, nil)

	// The cycle is rejected, the untangled entity still computes.
	assert.Equal(t, 1, result.CrudeProductsCalculated)
	require.Len(t, result.Errors, 2)
	for _, e := range result.Errors {
		assert.Contains(t, e.Message, "cyclic blend reference")
	}
}

func TestProductScopeNarrowsRun(t *testing.T) {
	snap := stage2Snapshot()
	snap.Products[21] = products.Product{
		ID: 21, Code: "P-21", ProductType: products.TypeInHouseManufacturing,
		StandardLotSize: dec("10"), IsActive: true,
	}
	snap.ProductBOMs[21] = bom.Header{
		ID: 4, OutputID: 21, BomType: bom.TypeProductProcess,
		YieldRate: decimal.NewFromInt(1),
		Lines: []bom.Line{
			{Input: bom.MaterialRef(101), Quantity: dec("2"), LossRate: dec("0")},
		},
	}

	result := testEngine().Run(snap, []int64{21})
	assert.Equal(t, 1, result.ProductsCalculated)
	assert.Equal(t, int64(21), result.ProductCosts[0].ProductID)
	// Product 21 references no crude products, so Stage 1 has nothing to do.
	assert.Zero(t, result.CrudeProductsCalculated)
}

func TestUnknownProductIDIsEntityError(t *testing.T) {
	result := testEngine().Run(stage2Snapshot(), []int64{999})
	assert.Zero(t, result.ProductsCalculated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "product", result.Errors[0].EntityKind)
	assert.Equal(t, int64(999), result.Errors[0].EntityID)
}

func TestOverridesChangeMaterialPrice(t *testing.T) {
	snap := baseSnapshot("0")
	overlaid := snap.WithOverrides(Overrides{
		MaterialPrices: map[int64]decimal.Decimal{100: dec("300")},
	})

	result := testEngine().Run(overlaid, nil)
	require.Len(t, result.CrudeProductCosts, 1)
	assert.True(t, result.CrudeProductCosts[0].MaterialCost.Equal(dec("3000")))

	// The original snapshot is untouched.
	assert.True(t, snap.Materials[100].StandardUnitPrice.Equal(dec("200")))
}

func TestCategoryRateChangeScalesPrices(t *testing.T) {
	snap := baseSnapshot("0")
	fruit := materials.CategoryFruit
	m := snap.Materials[100]
	m.Category = &fruit
	snap.Materials[100] = m

	overlaid := snap.WithOverrides(Overrides{
		CategoryRateChanges: map[string]decimal.Decimal{string(materials.CategoryFruit): dec("1.1")},
	})

	result := testEngine().Run(overlaid, nil)
	require.Len(t, result.CrudeProductCosts, 1)
	assert.True(t, result.CrudeProductCosts[0].MaterialCost.Equal(dec("2200")),
		"got %s", result.CrudeProductCosts[0].MaterialCost)
}
