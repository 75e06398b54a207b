package variance

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/genka-erp/genka-erp/jobs"
)

// FlagMetrics receives flagged-record counts per cost element.
type FlagMetrics interface {
	AddFlaggedVariances(costElement string, count int)
}

// AnalyzeJob runs a variance analysis in the background, typically
// right after an actuals import lands.
type AnalyzeJob struct {
	service *Service
	logger  *slog.Logger
	metrics FlagMetrics
}

// NewAnalyzeJob constructs the job. A nil metrics sink disables
// counter updates.
func NewAnalyzeJob(service *Service, logger *slog.Logger, metrics FlagMetrics) *AnalyzeJob {
	return &AnalyzeJob{service: service, logger: logger, metrics: metrics}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *AnalyzeJob) Handle(ctx context.Context, task *asynq.Task) error {
	var payload jobs.VarianceAnalyzePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.PeriodID == 0 {
		return asynq.SkipRetry
	}
	result, err := j.service.Analyze(ctx, payload.PeriodID, payload.ProductIDs, payload.ThresholdPercent)
	if err != nil {
		if j.logger != nil {
			j.logger.Error("background variance analysis", slog.Int64("period_id", payload.PeriodID), slog.Any("error", err))
		}
		return err
	}
	if j.metrics != nil {
		flagged := map[string]int{}
		for _, rec := range result.Details {
			if rec.IsFlagged {
				flagged[string(rec.CostElement)]++
			}
		}
		for element, count := range flagged {
			j.metrics.AddFlaggedVariances(element, count)
		}
	}
	if j.logger != nil {
		j.logger.Info("background variance analysis complete",
			slog.Int64("period_id", payload.PeriodID),
			slog.Int("records", result.RecordsCreated),
			slog.Int("flagged", result.FlaggedCount))
	}
	return nil
}
