package variance

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/costing"
)

// Type classifies how a variance arose. The price/quantity/mix/volume
// split shares one sign convention: negative is favorable.
type Type string

const (
	TypePrice    Type = "price"
	TypeQuantity Type = "quantity"
	TypeMix      Type = "mix"
	TypeVolume   Type = "volume"
	TypeTotal    Type = "total"
)

// DefaultThresholdPercent flags variances at or beyond ±5%.
var DefaultThresholdPercent = decimal.NewFromInt(5)

// Record is one persisted variance for a (product, cost element) pair
// in a period. VarianceAmount is always actual minus standard; a
// negative amount means less was spent than planned and the record is
// favorable.
type Record struct {
	ID              int64               `json:"id,omitempty"`
	ProductID       int64               `json:"product_id"`
	CostCenterID    *int64              `json:"cost_center_id,omitempty"`
	PeriodID        int64               `json:"period_id"`
	VarianceType    Type                `json:"variance_type"`
	CostElement     costing.CostElement `json:"cost_element"`
	StandardAmount  decimal.Decimal     `json:"standard_amount"`
	ActualAmount    decimal.Decimal     `json:"actual_amount"`
	VarianceAmount  decimal.Decimal     `json:"variance_amount"`
	VariancePercent decimal.Decimal     `json:"variance_percent"`
	IsFavorable     bool                `json:"is_favorable"`
	IsFlagged       bool                `json:"is_flagged"`
	FlagReason      string              `json:"flag_reason,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// AnalysisResult summarises one analysis run. ProductsAnalyzed counts
// products that had both standard and actual data; the skipped ones
// appear in SkippedProducts.
type AnalysisResult struct {
	PeriodID         int64           `json:"period_id"`
	ThresholdPercent decimal.Decimal `json:"threshold_percent"`
	ProductsAnalyzed int             `json:"products_analyzed"`
	RecordsCreated   int             `json:"records_created"`
	FlaggedCount     int             `json:"flagged_count"`
	TotalStandard    decimal.Decimal `json:"total_standard"`
	TotalActual      decimal.Decimal `json:"total_actual"`
	TotalVariance    decimal.Decimal `json:"total_variance"`
	Details          []Record        `json:"details"`
	SkippedProducts  []int64         `json:"skipped_products,omitempty"`
}

// ElementSummary aggregates persisted records for one cost element.
// AverageVariancePercent is the simple mean across records, not
// weighted by magnitude.
type ElementSummary struct {
	CostElement            costing.CostElement `json:"cost_element"`
	RecordCount            int                 `json:"record_count"`
	TotalStandard          decimal.Decimal     `json:"total_standard"`
	TotalActual            decimal.Decimal     `json:"total_actual"`
	TotalVariance          decimal.Decimal     `json:"total_variance"`
	AverageVariancePercent decimal.Decimal     `json:"average_variance_percent"`
	FavorableCount         int                 `json:"favorable_count"`
	UnfavorableCount       int                 `json:"unfavorable_count"`
	FlaggedCount           int                 `json:"flagged_count"`
}

// SummaryReport is the period-level rollup of persisted records.
type SummaryReport struct {
	PeriodID      int64            `json:"period_id"`
	Elements      []ElementSummary `json:"elements"`
	TotalStandard decimal.Decimal  `json:"total_standard"`
	TotalActual   decimal.Decimal  `json:"total_actual"`
	TotalVariance decimal.Decimal  `json:"total_variance"`
	IsFavorable   bool             `json:"is_favorable"`
}

// ListFilters narrows a record listing.
type ListFilters struct {
	PeriodID    int64
	ProductID   *int64
	CostElement *costing.CostElement
	IsFlagged   *bool
}

// ReviewUpdate carries the only mutations allowed on a persisted
// record: review state, never amounts.
type ReviewUpdate struct {
	IsFlagged  *bool   `json:"is_flagged,omitempty"`
	FlagReason *string `json:"flag_reason,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

var ErrNotFound = errors.New("variance: not found")
