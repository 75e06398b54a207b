package costing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/allocation"
)

// CostElement names one component of a standard or actual cost.
type CostElement string

const (
	ElementCrudeProduct CostElement = "crude_product"
	ElementPackaging    CostElement = "packaging"
	ElementLabor        CostElement = "labor"
	ElementOverhead     CostElement = "overhead"
	ElementOutsourcing  CostElement = "outsourcing"
	ElementPriorProcess CostElement = "prior_process"
)

// Elements lists the product-level cost elements in reporting order.
func Elements() []CostElement {
	return []CostElement{ElementCrudeProduct, ElementPackaging, ElementLabor, ElementOverhead, ElementOutsourcing}
}

// CrudeProductStandardCost is the Stage 1 result for one crude product
// and period. TotalCost is the exact sum of the four cost elements and
// UnitCost = TotalCost / StandardQuantity.
type CrudeProductStandardCost struct {
	ID               int64           `json:"id,omitempty"`
	CrudeProductID   int64           `json:"crude_product_id"`
	PeriodID         int64           `json:"period_id"`
	MaterialCost     decimal.Decimal `json:"material_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	PriorProcessCost decimal.Decimal `json:"prior_process_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	StandardQuantity decimal.Decimal `json:"standard_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	CalculatedAt     time.Time       `json:"calculated_at"`
}

// StandardCost is the Stage 2 result for one product and period.
// TotalCost is the exact sum of the five cost elements and
// UnitCost = TotalCost / LotSize.
type StandardCost struct {
	ID               int64           `json:"id,omitempty"`
	ProductID        int64           `json:"product_id"`
	PeriodID         int64           `json:"period_id"`
	CrudeProductCost decimal.Decimal `json:"crude_product_cost"`
	PackagingCost    decimal.Decimal `json:"packaging_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	OutsourcingCost  decimal.Decimal `json:"outsourcing_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	LotSize          decimal.Decimal `json:"lot_size"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	CalculatedAt     time.Time       `json:"calculated_at"`
}

// Element returns the named cost element's amount.
func (sc StandardCost) Element(e CostElement) decimal.Decimal {
	switch e {
	case ElementCrudeProduct:
		return sc.CrudeProductCost
	case ElementPackaging:
		return sc.PackagingCost
	case ElementLabor:
		return sc.LaborCost
	case ElementOverhead:
		return sc.OverheadCost
	case ElementOutsourcing:
		return sc.OutsourcingCost
	}
	return decimal.Zero
}

// BudgetChange overrides parts of one cost center's budget during a
// simulation. Nil fields keep the stored value.
type BudgetChange struct {
	CostCenterID      int64            `json:"cost_center_id"`
	LaborBudget       *decimal.Decimal `json:"labor_budget,omitempty"`
	OverheadBudget    *decimal.Decimal `json:"overhead_budget,omitempty"`
	OutsourcingBudget *decimal.Decimal `json:"outsourcing_budget,omitempty"`
}

// Overrides is the in-memory input overlay a simulation runs against.
// Nothing in it is ever persisted. CategoryRateChanges multiplies the
// standard unit price of every material in a category.
type Overrides struct {
	MaterialPrices      map[int64]decimal.Decimal  `json:"material_prices,omitempty"`
	BudgetChanges       []BudgetChange             `json:"budget_changes,omitempty"`
	CategoryRateChanges map[string]decimal.Decimal `json:"category_rate_changes,omitempty"`
}

// Empty reports whether the overlay changes nothing.
func (o Overrides) Empty() bool {
	return len(o.MaterialPrices) == 0 && len(o.BudgetChanges) == 0 && len(o.CategoryRateChanges) == 0
}

// EntityError records a per-entity configuration or data failure. The
// entity is excluded from the run's counts; the run itself continues.
type EntityError struct {
	EntityKind string `json:"entity_kind"`
	EntityID   int64  `json:"entity_id"`
	Message    string `json:"message"`
}

// CalculationResult is the outcome of one roll-up run, calculated or
// simulated. Counts cover successes only.
type CalculationResult struct {
	PeriodID                int64                      `json:"period_id"`
	Simulated               bool                       `json:"simulated"`
	CrudeProductsCalculated int                        `json:"crude_products_calculated"`
	ProductsCalculated      int                        `json:"products_calculated"`
	TotalCrudeProductCost   decimal.Decimal            `json:"total_crude_product_cost"`
	TotalProductCost        decimal.Decimal            `json:"total_product_cost"`
	CrudeProductCosts       []CrudeProductStandardCost `json:"crude_product_costs"`
	ProductCosts            []StandardCost             `json:"product_costs"`
	Errors                  []EntityError              `json:"errors,omitempty"`
	Warnings                []allocation.Warning       `json:"warnings,omitempty"`
}

var (
	// ErrBlendCycle marks a cyclic blend reference, fatal to the
	// entities on the cycle.
	ErrBlendCycle = errors.New("costing: cyclic blend reference")
	// ErrNotFound covers unknown ids supplied by the caller.
	ErrNotFound = errors.New("costing: not found")
)
