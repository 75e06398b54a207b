package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CostBudget holds one cost center's planned manufacturing spend for a
// fiscal period. ProductionHours is optional; when present it feeds the
// production_hours allocation basis.
type CostBudget struct {
	ID                int64            `json:"id"`
	CostCenterID      int64            `json:"cost_center_id"`
	PeriodID          int64            `json:"period_id"`
	LaborBudget       decimal.Decimal  `json:"labor_budget"`
	OverheadBudget    decimal.Decimal  `json:"overhead_budget"`
	OutsourcingBudget decimal.Decimal  `json:"outsourcing_budget"`
	ProductionHours   *decimal.Decimal `json:"production_hours,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("budget: not found")
	ErrDuplicate  = errors.New("budget: budget already exists for cost center and period")
	ErrValidation = errors.New("budget: validation failed")
)
