package allocation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Basis names the quantity a rule distributes cost in proportion to.
type Basis string

const (
	BasisProductionHours     Basis = "production_hours"
	BasisRawMaterialQuantity Basis = "raw_material_quantity"
	BasisCrudeQuantity       Basis = "crude_quantity"
	BasisWeightBased         Basis = "weight_based"
	BasisManual              Basis = "manual"
)

func (b Basis) Valid() bool {
	switch b {
	case BasisProductionHours, BasisRawMaterialQuantity, BasisCrudeQuantity, BasisWeightBased, BasisManual:
		return true
	}
	return false
}

// Rule distributes a source cost center's indirect cost across target
// cost centers. CostElement narrows a rule to "labor" or "overhead";
// empty matches every element, and an exact match outranks the
// wildcard. Lower Priority wins among rules at the same specificity.
type Rule struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	SourceCostCenterID int64     `json:"source_cost_center_id"`
	CostElement        string    `json:"cost_element,omitempty"`
	Basis              Basis     `json:"basis"`
	Priority           int       `json:"priority"`
	IsActive           bool      `json:"is_active"`
	Targets            []Target  `json:"targets,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Target is one destination of a rule. Ratios across a rule's targets
// should sum to 1; the engine applies them as given and reports a sum
// off 1 as a data-quality warning, never normalizes.
type Target struct {
	ID                 int64           `json:"id"`
	RuleID             int64           `json:"rule_id"`
	TargetCostCenterID int64           `json:"target_cost_center_id"`
	Ratio              decimal.Decimal `json:"ratio"`
}

// RatioSum is the arithmetic sum of target ratios.
func (r Rule) RatioSum() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range r.Targets {
		sum = sum.Add(t.Ratio)
	}
	return sum
}

var (
	ErrNotFound     = errors.New("allocation: rule not found")
	ErrInvalidBasis = errors.New("allocation: invalid basis")
	ErrNoTargets    = errors.New("allocation: rule requires at least one target")
)
