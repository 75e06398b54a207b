package costing

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/genka-erp/genka-erp/jobs"
)

// RecalculateJob runs a full-period roll-up in the background, used by
// scheduled refreshes and bulk master data imports.
type RecalculateJob struct {
	service *Service
	logger  *slog.Logger
}

func NewRecalculateJob(service *Service, logger *slog.Logger) *RecalculateJob {
	return &RecalculateJob{service: service, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *RecalculateJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.RecalculatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.PeriodID == 0 {
		return asynq.SkipRetry
	}
	result, err := j.service.Calculate(ctx, payload.PeriodID, payload.ProductIDs)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("background recalculation", slog.Int64("period_id", payload.PeriodID), slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		j.logger.Info("background recalculation complete",
			slog.Int64("period_id", payload.PeriodID),
			slog.Int("crude_products", result.CrudeProductsCalculated),
			slog.Int("products", result.ProductsCalculated))
	}
	return nil
}
