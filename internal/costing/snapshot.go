package costing

import (
	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
)

// Snapshot is the frozen input set one roll-up run computes from. The
// loader assembles it once per run; the engine never touches a
// repository, so simulations can overlay hypothetical inputs without
// reaching the database.
type Snapshot struct {
	PeriodID int64

	Materials     map[int64]materials.Material
	CrudeProducts map[int64]crudeproducts.CrudeProduct
	Products      map[int64]products.Product

	// Resolved recipe per output entity id.
	CrudeBOMs   map[int64]bom.Header
	ProductBOMs map[int64]bom.Header

	// Budgets of the manufacturing and product cost centers for the
	// period. Nil when no budget row exists; the affected cost
	// elements come out zero.
	ManufacturingBudget *budget.CostBudget
	ProductBudget       *budget.CostBudget

	Rules []allocation.Rule

	ManufacturingCenterID int64
	ProductCenterID       int64
}

// WithOverrides returns a copy of the snapshot with the simulation
// overlay applied. The receiver is left untouched.
func (s Snapshot) WithOverrides(o Overrides) Snapshot {
	if o.Empty() {
		return s
	}
	out := s

	out.Materials = make(map[int64]materials.Material, len(s.Materials))
	for id, m := range s.Materials {
		if m.Category != nil {
			if rate, ok := o.CategoryRateChanges[string(*m.Category)]; ok {
				m.StandardUnitPrice = m.StandardUnitPrice.Mul(rate)
			}
		}
		if price, ok := o.MaterialPrices[id]; ok {
			m.StandardUnitPrice = price
		}
		out.Materials[id] = m
	}

	for _, change := range o.BudgetChanges {
		apply := func(b *budget.CostBudget) *budget.CostBudget {
			if b == nil || b.CostCenterID != change.CostCenterID {
				return b
			}
			copied := *b
			if change.LaborBudget != nil {
				copied.LaborBudget = *change.LaborBudget
			}
			if change.OverheadBudget != nil {
				copied.OverheadBudget = *change.OverheadBudget
			}
			if change.OutsourcingBudget != nil {
				copied.OutsourcingBudget = *change.OutsourcingBudget
			}
			return &copied
		}
		out.ManufacturingBudget = apply(out.ManufacturingBudget)
		out.ProductBudget = apply(out.ProductBudget)
	}
	return out
}
