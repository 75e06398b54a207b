package reconciliation

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status classifies one reconciliation line.
type Status string

const (
	// StatusMatched means both systems reported and the difference is
	// within the threshold.
	StatusMatched Status = "matched"
	// StatusDiscrepancy means both systems reported but disagree beyond
	// the threshold.
	StatusDiscrepancy Status = "discrepancy"
	// StatusUnmatched means only one system has data for the entity.
	StatusUnmatched Status = "unmatched"
)

// DefaultThreshold tolerates rounding drift up to ¥1,000 between the
// costing system and the accounting export.
var DefaultThreshold = decimal.NewFromInt(1000)

// Result is one cross-system comparison for an entity in a period.
// Nil values mean the system had no data.
type Result struct {
	ID         int64            `json:"id,omitempty"`
	PeriodID   int64            `json:"period_id"`
	EntityType string           `json:"entity_type"`
	EntityID   int64            `json:"entity_id"`
	SourceA    string           `json:"source_a"`
	SourceB    string           `json:"source_b"`
	ValueA     *decimal.Decimal `json:"value_a,omitempty"`
	ValueB     *decimal.Decimal `json:"value_b,omitempty"`
	Difference *decimal.Decimal `json:"difference,omitempty"`
	Status     Status           `json:"status"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Summary counts a period's results by status.
type Summary struct {
	PeriodID    int64 `json:"period_id"`
	Total       int   `json:"total"`
	Matched     int   `json:"matched"`
	Unmatched   int   `json:"unmatched"`
	Discrepancy int   `json:"discrepancy"`
}

var ErrNotFound = errors.New("reconciliation: not found")
