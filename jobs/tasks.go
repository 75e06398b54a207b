package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCostingRecalculate runs a full standard cost roll-up for a period.
	TaskCostingRecalculate = "costing:recalculate"
	// TaskVarianceAnalyze runs variance analysis for a period.
	TaskVarianceAnalyze = "variance:analyze"
	// TaskReconciliationRun compares actual costs across source systems.
	TaskReconciliationRun = "reconciliation:run"
)

// RecalculatePayload selects the period (and optionally a product
// subset) the background roll-up covers.
type RecalculatePayload struct {
	PeriodID   int64   `json:"period_id"`
	ProductIDs []int64 `json:"product_ids,omitempty"`
}

// NewRecalculateTask constructs an Asynq task for a background roll-up.
func NewRecalculateTask(payload RecalculatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCostingRecalculate, body, asynq.Queue(QueueDefault)), nil
}

// VarianceAnalyzePayload selects the period a background variance
// analysis covers. A nil threshold uses the service default.
type VarianceAnalyzePayload struct {
	PeriodID         int64            `json:"period_id"`
	ProductIDs       []int64          `json:"product_ids,omitempty"`
	ThresholdPercent *decimal.Decimal `json:"threshold_percent,omitempty"`
}

// NewVarianceAnalyzeTask constructs an Asynq task for variance analysis.
func NewVarianceAnalyzeTask(payload VarianceAnalyzePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVarianceAnalyze, body, asynq.Queue(QueueDefault)), nil
}

// ReconcilePayload selects the period a background reconciliation run
// covers. A nil threshold uses the service default.
type ReconcilePayload struct {
	PeriodID  int64            `json:"period_id"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
}

// NewReconcileTask constructs an Asynq task for a reconciliation run.
func NewReconcileTask(payload ReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconciliationRun, body, asynq.Queue(QueueDefault)), nil
}
