package costing

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/money"
)

// Engine performs the two-stage standard cost roll-up. Stage 1 prices
// every crude product from raw materials and the manufacturing budget;
// Stage 2 prices every product from Stage 1 unit costs, packaging
// materials and the product budget. The engine is pure over a
// Snapshot: same inputs, same outputs.
type Engine struct {
	logger  *slog.Logger
	workers int
}

func NewEngine(logger *slog.Logger, workers int) *Engine {
	if workers < 1 {
		workers = 4
	}
	return &Engine{logger: logger, workers: workers}
}

// Run executes both stages for the snapshot's period. productIDs
// narrows Stage 2 to the given products and Stage 1 to the crude
// products they reference, transitively through blends; empty means
// the full active scope. Per-entity failures are collected, never
// fatal to the run.
func (e *Engine) Run(snap Snapshot, productIDs []int64) CalculationResult {
	result := CalculationResult{
		PeriodID:              snap.PeriodID,
		TotalCrudeProductCost: decimal.Zero,
		TotalProductCost:      decimal.Zero,
	}

	productScope := e.productScope(snap, productIDs, &result)
	crudeScope := e.crudeScope(snap, productScope, productIDs)

	crudeCosts := e.runStage1(snap, crudeScope, &result)
	e.runStage2(snap, productScope, crudeCosts, &result)

	sort.Slice(result.CrudeProductCosts, func(i, j int) bool {
		return result.CrudeProductCosts[i].CrudeProductID < result.CrudeProductCosts[j].CrudeProductID
	})
	sort.Slice(result.ProductCosts, func(i, j int) bool {
		return result.ProductCosts[i].ProductID < result.ProductCosts[j].ProductID
	})
	for _, c := range result.CrudeProductCosts {
		result.TotalCrudeProductCost = result.TotalCrudeProductCost.Add(c.TotalCost)
	}
	for _, p := range result.ProductCosts {
		result.TotalProductCost = result.TotalProductCost.Add(p.TotalCost)
	}
	result.CrudeProductsCalculated = len(result.CrudeProductCosts)
	result.ProductsCalculated = len(result.ProductCosts)

	e.logger.Info("cost roll-up complete",
		slog.Int64("period_id", snap.PeriodID),
		slog.Int("crude_products", result.CrudeProductsCalculated),
		slog.Int("products", result.ProductsCalculated),
		slog.Int("entity_errors", len(result.Errors)))
	return result
}

// productScope resolves the Stage 2 entity set: explicitly requested
// products, or every active product that has a recipe.
func (e *Engine) productScope(snap Snapshot, productIDs []int64, result *CalculationResult) []int64 {
	var scope []int64
	if len(productIDs) > 0 {
		for _, id := range productIDs {
			if _, ok := snap.Products[id]; !ok {
				result.Errors = append(result.Errors, EntityError{
					EntityKind: "product", EntityID: id, Message: "unknown product",
				})
				continue
			}
			scope = append(scope, id)
		}
		return scope
	}
	for id, p := range snap.Products {
		if !p.IsActive {
			continue
		}
		if _, ok := snap.ProductBOMs[id]; ok {
			scope = append(scope, id)
		}
	}
	sort.Slice(scope, func(i, j int) bool { return scope[i] < scope[j] })
	return scope
}

// crudeScope resolves the Stage 1 entity set. A narrowed run still
// computes every crude product the scoped products consume, plus the
// blend sources those depend on.
func (e *Engine) crudeScope(snap Snapshot, productScope []int64, productIDs []int64) []int64 {
	seen := make(map[int64]bool)
	var add func(id int64)
	add = func(id int64) {
		if seen[id] {
			return
		}
		seen[id] = true
		if cp, ok := snap.CrudeProducts[id]; ok && cp.IsBlend {
			for _, src := range cp.BlendSourceIDs {
				add(src)
			}
		}
		if header, ok := snap.CrudeBOMs[id]; ok {
			for _, line := range header.Lines {
				if line.Input.Kind == bom.InputCrudeProduct {
					add(line.Input.ID)
				}
			}
		}
	}

	if len(productIDs) > 0 {
		for _, pid := range productScope {
			header, ok := snap.ProductBOMs[pid]
			if !ok {
				continue
			}
			for _, line := range header.Lines {
				if line.Input.Kind == bom.InputCrudeProduct {
					add(line.Input.ID)
				}
			}
		}
	} else {
		for id, cp := range snap.CrudeProducts {
			if !cp.IsActive {
				continue
			}
			if _, ok := snap.CrudeBOMs[id]; ok {
				add(id)
			}
		}
	}

	scope := make([]int64, 0, len(seen))
	for id := range seen {
		scope = append(scope, id)
	}
	sort.Slice(scope, func(i, j int) bool { return scope[i] < scope[j] })
	return scope
}

// standardQuantity is the yield-adjusted usable batch output: nominal
// batch size times yield rate, the nominal size being the declared
// batch size or the sum of line quantities when none is declared.
func standardQuantity(header bom.Header) decimal.Decimal {
	nominal := decimal.Zero
	if header.BatchSize != nil {
		nominal = *header.BatchSize
	} else {
		for _, line := range header.Lines {
			nominal = nominal.Add(line.Quantity)
		}
	}
	return nominal.Mul(header.YieldRate)
}

func (e *Engine) runStage1(snap Snapshot, scope []int64, result *CalculationResult) map[int64]CrudeProductStandardCost {
	costs := make(map[int64]CrudeProductStandardCost, len(scope))
	if len(scope) == 0 {
		return costs
	}

	quantities := make(map[int64]decimal.Decimal, len(scope))
	for _, id := range scope {
		header, ok := snap.CrudeBOMs[id]
		if !ok {
			result.Errors = append(result.Errors, EntityError{
				EntityKind: "crude_product", EntityID: id, Message: "no effective bom",
			})
			continue
		}
		qty := standardQuantity(header)
		if !qty.IsPositive() {
			result.Errors = append(result.Errors, EntityError{
				EntityKind: "crude_product", EntityID: id, Message: "standard quantity is not positive",
			})
			continue
		}
		quantities[id] = qty
	}

	waves, cycleErrs := blendWaves(snap, quantities)
	for _, entityErr := range cycleErrs {
		delete(quantities, entityErr.EntityID)
	}
	result.Errors = append(result.Errors, cycleErrs...)

	laborShares, overheadShares := e.allocateStage1(snap, quantities, result)

	now := time.Now()
	for _, wave := range waves {
		// Within a wave entities are independent; costs from earlier
		// waves are read-only here.
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		sem := make(chan struct{}, e.workers)
		computed := make(map[int64]CrudeProductStandardCost, len(wave))
		for _, id := range wave {
			wg.Add(1)
			sem <- struct{}{}
			go func(id int64) {
				defer wg.Done()
				defer func() { <-sem }()
				cost, err := e.costCrudeProduct(snap, id, quantities[id], laborShares[id], overheadShares[id], costs, now)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.Errors = append(result.Errors, EntityError{
						EntityKind: "crude_product", EntityID: id, Message: err.Error(),
					})
					return
				}
				computed[id] = cost
			}(id)
		}
		wg.Wait()
		for id, cost := range computed {
			costs[id] = cost
			result.CrudeProductCosts = append(result.CrudeProductCosts, cost)
		}
	}
	return costs
}

// allocateStage1 distributes the manufacturing budget's labor and
// overhead totals across crude products. A matching allocation rule
// picks the basis; quantity share is the default policy.
func (e *Engine) allocateStage1(snap Snapshot, quantities map[int64]decimal.Decimal, result *CalculationResult) (labor, overhead map[int64]decimal.Decimal) {
	labor = map[int64]decimal.Decimal{}
	overhead = map[int64]decimal.Decimal{}
	if snap.ManufacturingBudget == nil {
		return labor, overhead
	}

	distribute := func(total decimal.Decimal, element string) map[int64]decimal.Decimal {
		if rule, ok := allocation.Match(snap.Rules, snap.ManufacturingCenterID, element); ok {
			if rule.Basis == allocation.BasisManual {
				result.Warnings = append(result.Warnings, allocation.Warning{
					RuleID:  rule.ID,
					Message: "manual basis is cost-center scoped, falling back to quantity share",
				})
			}
			if sum := rule.RatioSum(); rule.Basis == allocation.BasisManual && !sum.Equal(decimal.NewFromInt(1)) {
				result.Warnings = append(result.Warnings, allocation.Warning{
					RuleID:  rule.ID,
					Message: "target ratios sum to " + sum.String() + ", expected 1",
				})
			}
		}
		out := make(map[int64]decimal.Decimal, len(quantities))
		for _, share := range allocation.ByQuantity(total, quantities) {
			out[share.EntityID] = share.Amount
		}
		return out
	}

	return distribute(snap.ManufacturingBudget.LaborBudget, "labor"),
		distribute(snap.ManufacturingBudget.OverheadBudget, "overhead")
}

// costCrudeProduct prices one crude product. Blend sources must already
// be present in computed; blendWaves guarantees the ordering.
func (e *Engine) costCrudeProduct(snap Snapshot, id int64, qty, laborCost, overheadCost decimal.Decimal, computed map[int64]CrudeProductStandardCost, now time.Time) (CrudeProductStandardCost, error) {
	header := snap.CrudeBOMs[id]

	materialCost := decimal.Zero
	priorProcess := decimal.Zero
	for _, line := range header.Lines {
		required := line.RequiredQuantity()
		switch line.Input.Kind {
		case bom.InputMaterial:
			m, ok := snap.Materials[line.Input.ID]
			if !ok {
				return CrudeProductStandardCost{}, fmt.Errorf("unknown material %d", line.Input.ID)
			}
			materialCost = materialCost.Add(required.Mul(m.StandardUnitPrice))
		case bom.InputCrudeProduct:
			src, ok := computed[line.Input.ID]
			if !ok {
				return CrudeProductStandardCost{}, fmt.Errorf("blend source %d has no stage 1 cost", line.Input.ID)
			}
			priorProcess = priorProcess.Add(required.Mul(src.UnitCost))
		}
	}

	// A blend declared through blend_source_ids without explicit crude
	// lines averages its sources' unit costs over the batch.
	cp := snap.CrudeProducts[id]
	if priorProcess.IsZero() && cp.IsBlend && len(cp.BlendSourceIDs) > 0 {
		sum := decimal.Zero
		for _, srcID := range cp.BlendSourceIDs {
			src, ok := computed[srcID]
			if !ok {
				return CrudeProductStandardCost{}, fmt.Errorf("blend source %d has no stage 1 cost", srcID)
			}
			sum = sum.Add(src.UnitCost)
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(cp.BlendSourceIDs))))
		priorProcess = avg.Mul(qty)
	}

	materialCost = money.Round(materialCost)
	priorProcess = money.Round(priorProcess)
	total := materialCost.Add(laborCost).Add(overheadCost).Add(priorProcess)

	return CrudeProductStandardCost{
		CrudeProductID:   id,
		PeriodID:         snap.PeriodID,
		MaterialCost:     materialCost,
		LaborCost:        laborCost,
		OverheadCost:     overheadCost,
		PriorProcessCost: priorProcess,
		TotalCost:        total,
		StandardQuantity: qty,
		UnitCost:         money.Round(total.Div(qty)),
		CalculatedAt:     now,
	}, nil
}

func (e *Engine) runStage2(snap Snapshot, scope []int64, crudeCosts map[int64]CrudeProductStandardCost, result *CalculationResult) {
	if len(scope) == 0 {
		return
	}

	lotSizes := make(map[int64]decimal.Decimal, len(scope))
	outsourcedQty := map[int64]decimal.Decimal{}
	for _, id := range scope {
		header, ok := snap.ProductBOMs[id]
		product := snap.Products[id]
		var lot decimal.Decimal
		if ok && header.BatchSize != nil {
			lot = header.BatchSize.Mul(header.YieldRate)
		} else {
			lot = product.StandardLotSize
		}
		if !lot.IsPositive() {
			result.Errors = append(result.Errors, EntityError{
				EntityKind: "product", EntityID: id, Message: "lot size is not positive",
			})
			continue
		}
		lotSizes[id] = lot
		if product.ProductType.RequiresOutsourcing() {
			outsourcedQty[id] = lot
		}
	}

	laborShares, overheadShares := e.allocateStage2(snap, scope, lotSizes, result)

	outsourcingShares := map[int64]decimal.Decimal{}
	if snap.ProductBudget != nil && len(outsourcedQty) > 0 {
		for _, share := range allocation.ByQuantity(snap.ProductBudget.OutsourcingBudget, outsourcedQty) {
			outsourcingShares[share.EntityID] = share.Amount
		}
	}

	now := time.Now()
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)
	for id := range lotSizes {
		wg.Add(1)
		sem <- struct{}{}
		go func(id int64) {
			defer wg.Done()
			defer func() { <-sem }()
			cost, err := e.costProduct(snap, id, lotSizes[id], laborShares[id], overheadShares[id], outsourcingShares[id], crudeCosts, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, EntityError{
					EntityKind: "product", EntityID: id, Message: err.Error(),
				})
				return
			}
			result.ProductCosts = append(result.ProductCosts, cost)
		}(id)
	}
	wg.Wait()
}

// allocateStage2 distributes the product budget's labor and overhead.
// The production_hours basis falls back to raw material quantity when
// the period's budget records no hours; weight_based uses the content
// weight from the product master.
func (e *Engine) allocateStage2(snap Snapshot, scope []int64, lotSizes map[int64]decimal.Decimal, result *CalculationResult) (labor, overhead map[int64]decimal.Decimal) {
	labor = map[int64]decimal.Decimal{}
	overhead = map[int64]decimal.Decimal{}
	if snap.ProductBudget == nil {
		return labor, overhead
	}
	hasHours := snap.ProductBudget.ProductionHours != nil && snap.ProductBudget.ProductionHours.IsPositive()

	basisQuantities := func(basis allocation.Basis) map[int64]decimal.Decimal {
		out := make(map[int64]decimal.Decimal, len(lotSizes))
		for id := range lotSizes {
			switch allocation.EffectiveBasis(basis, hasHours) {
			case allocation.BasisWeightBased:
				if w := snap.Products[id].ContentWeightG; w != nil {
					out[id] = w.Mul(lotSizes[id])
					continue
				}
				out[id] = lotSizes[id]
			case allocation.BasisRawMaterialQuantity:
				out[id] = rawMaterialQuantity(snap, id, lotSizes[id])
			default:
				out[id] = lotSizes[id]
			}
		}
		return out
	}

	distribute := func(total decimal.Decimal, element string) map[int64]decimal.Decimal {
		basis := allocation.BasisRawMaterialQuantity
		if rule, ok := allocation.Match(snap.Rules, snap.ProductCenterID, element); ok {
			basis = rule.Basis
		}
		out := make(map[int64]decimal.Decimal, len(lotSizes))
		for _, share := range allocation.ByQuantity(total, basisQuantities(basis)) {
			out[share.EntityID] = share.Amount
		}
		return out
	}

	return distribute(snap.ProductBudget.LaborBudget, "labor"),
		distribute(snap.ProductBudget.OverheadBudget, "overhead")
}

// rawMaterialQuantity sums a product recipe's required input
// quantities, the fallback allocation basis.
func rawMaterialQuantity(snap Snapshot, id int64, lotSize decimal.Decimal) decimal.Decimal {
	header, ok := snap.ProductBOMs[id]
	if !ok {
		return lotSize
	}
	sum := decimal.Zero
	for _, line := range header.Lines {
		sum = sum.Add(line.RequiredQuantity())
	}
	if !sum.IsPositive() {
		return lotSize
	}
	return sum
}

func (e *Engine) costProduct(snap Snapshot, id int64, lotSize, laborCost, overheadCost, outsourcingCost decimal.Decimal, crudeCosts map[int64]CrudeProductStandardCost, now time.Time) (StandardCost, error) {
	header, hasBOM := snap.ProductBOMs[id]
	if !hasBOM {
		return StandardCost{}, fmt.Errorf("no effective bom")
	}

	crudeCost := decimal.Zero
	packagingCost := decimal.Zero
	for _, line := range header.Lines {
		required := line.RequiredQuantity()
		switch line.Input.Kind {
		case bom.InputCrudeProduct:
			src, ok := crudeCosts[line.Input.ID]
			if !ok {
				return StandardCost{}, fmt.Errorf("crude product %d has no stage 1 cost", line.Input.ID)
			}
			crudeCost = crudeCost.Add(required.Mul(src.UnitCost))
		case bom.InputMaterial:
			m, ok := snap.Materials[line.Input.ID]
			if !ok {
				return StandardCost{}, fmt.Errorf("unknown material %d", line.Input.ID)
			}
			packagingCost = packagingCost.Add(required.Mul(m.StandardUnitPrice))
		}
	}

	crudeCost = money.Round(crudeCost)
	packagingCost = money.Round(packagingCost)
	total := crudeCost.Add(packagingCost).Add(laborCost).Add(overheadCost).Add(outsourcingCost)

	return StandardCost{
		ProductID:        id,
		PeriodID:         snap.PeriodID,
		CrudeProductCost: crudeCost,
		PackagingCost:    packagingCost,
		LaborCost:        laborCost,
		OverheadCost:     overheadCost,
		OutsourcingCost:  outsourcingCost,
		TotalCost:        total,
		LotSize:          lotSize,
		UnitCost:         money.Round(total.Div(lotSize)),
		CalculatedAt:     now,
	}, nil
}

// blendWaves orders Stage 1 entities so every blend runs after its
// sources. Entities left unplaced sit on a cycle and are rejected.
func blendWaves(snap Snapshot, quantities map[int64]decimal.Decimal) ([][]int64, []EntityError) {
	deps := make(map[int64][]int64, len(quantities))
	for id := range quantities {
		var sources []int64
		if cp, ok := snap.CrudeProducts[id]; ok && cp.IsBlend {
			sources = append(sources, cp.BlendSourceIDs...)
		}
		if header, ok := snap.CrudeBOMs[id]; ok {
			for _, line := range header.Lines {
				if line.Input.Kind == bom.InputCrudeProduct {
					sources = append(sources, line.Input.ID)
				}
			}
		}
		deps[id] = sources
	}

	placed := make(map[int64]bool, len(deps))
	var waves [][]int64
	for len(placed) < len(deps) {
		var wave []int64
		for id, sources := range deps {
			if placed[id] {
				continue
			}
			ready := true
			for _, src := range sources {
				if _, inScope := deps[src]; inScope && !placed[src] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			var errs []EntityError
			for id := range deps {
				if !placed[id] {
					errs = append(errs, EntityError{
						EntityKind: "crude_product", EntityID: id, Message: ErrBlendCycle.Error(),
					})
				}
			}
			sort.Slice(errs, func(i, j int) bool { return errs[i].EntityID < errs[j].EntityID })
			return waves, errs
		}
		sort.Slice(wave, func(i, j int) bool { return wave[i] < wave[j] })
		for _, id := range wave {
			placed[id] = true
		}
		waves = append(waves, wave)
	}
	return waves, nil
}
