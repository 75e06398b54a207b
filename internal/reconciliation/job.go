package reconciliation

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/genka-erp/genka-erp/jobs"
)

// RunJob reconciles a period in the background, typically scheduled
// after the accounting export lands.
type RunJob struct {
	service *Service
	logger  *slog.Logger
}

func NewRunJob(service *Service, logger *slog.Logger) *RunJob {
	return &RunJob{service: service, logger: logger}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *RunJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.ReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.PeriodID == 0 {
		return asynq.SkipRetry
	}
	results, err := j.service.Run(ctx, payload.PeriodID, payload.Threshold)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("background reconciliation", slog.Int64("period_id", payload.PeriodID), slog.Any("error", err))
		}
		return err
	}
	if j.logger != nil {
		summary := Summarize(payload.PeriodID, results)
		j.logger.Info("background reconciliation complete",
			slog.Int64("period_id", payload.PeriodID),
			slog.Int("total", summary.Total),
			slog.Int("discrepancy", summary.Discrepancy))
	}
	return nil
}
