package actuals

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Source systems actual costs are ingested from. One row may exist per
// (product, period, source system); reconciliation compares the two
// sources, variance analysis prefers the costing system's row.
const (
	SourceSCSystem    = "sc_system"
	SourceKanjyoBugyo = "kanjyo_bugyo"
)

// ActualCost is a product's realised cost for a period, ingested from
// an operational source system. The element shape mirrors the standard
// cost so the variance engine can compare them one to one.
type ActualCost struct {
	ID               int64           `json:"id,omitempty"`
	ProductID        int64           `json:"product_id"`
	PeriodID         int64           `json:"period_id"`
	CrudeProductCost decimal.Decimal `json:"crude_product_cost"`
	PackagingCost    decimal.Decimal `json:"packaging_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	OutsourcingCost  decimal.Decimal `json:"outsourcing_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	QuantityProduced decimal.Decimal `json:"quantity_produced"`
	SourceSystem     string          `json:"source_system"`
	ImportBatchID    string          `json:"import_batch_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Sum recomputes the element total.
func (a ActualCost) Sum() decimal.Decimal {
	return a.CrudeProductCost.Add(a.PackagingCost).Add(a.LaborCost).Add(a.OverheadCost).Add(a.OutsourcingCost)
}

// CrudeProductActualCost is the Stage 1 counterpart, per crude product.
type CrudeProductActualCost struct {
	ID               int64           `json:"id,omitempty"`
	CrudeProductID   int64           `json:"crude_product_id"`
	PeriodID         int64           `json:"period_id"`
	MaterialCost     decimal.Decimal `json:"material_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	OverheadCost     decimal.Decimal `json:"overhead_cost"`
	PriorProcessCost decimal.Decimal `json:"prior_process_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ActualQuantity   decimal.Decimal `json:"actual_quantity"`
	SourceSystem     string          `json:"source_system"`
	ImportBatchID    string          `json:"import_batch_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ImportResult summarises one spreadsheet ingestion run.
type ImportResult struct {
	BatchID      string   `json:"batch_id"`
	PeriodID     int64    `json:"period_id"`
	SourceSystem string   `json:"source_system"`
	RowsImported int      `json:"rows_imported"`
	RowsSkipped  int      `json:"rows_skipped"`
	Errors       []string `json:"errors,omitempty"`
}

var (
	ErrNotFound      = errors.New("actuals: not found")
	ErrInvalidImport = errors.New("actuals: invalid import file")
)
