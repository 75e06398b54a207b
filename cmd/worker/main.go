package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/app"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	"github.com/genka-erp/genka-erp/internal/costing"
	jobmetrics "github.com/genka-erp/genka-erp/internal/jobs"
	"github.com/genka-erp/genka-erp/internal/masterdata/costcenters"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/reconciliation"
	"github.com/genka-erp/genka-erp/internal/shared"
	"github.com/genka-erp/genka-erp/internal/variance"
	"github.com/genka-erp/genka-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	metrics := jobmetrics.NewMetrics(nil)

	materialRepo := materials.NewRepository(pool)
	crudeRepo := crudeproducts.NewRepository(pool)
	productRepo := products.NewRepository(pool)
	centerRepo := costcenters.NewRepository(pool)
	bomRepo := bom.NewRepository(pool)
	budgetRepo := budget.NewRepository(pool)
	ruleRepo := allocation.NewRepository(pool)
	periodRepo := periods.NewRepository(pool)

	loader := costing.NewLoader(materialRepo, crudeRepo, productRepo, centerRepo, bomRepo, budgetRepo, ruleRepo)
	engine := costing.NewEngine(logger, cfg.CostingWorkers)
	resultRepo := costing.NewResultRepository(pool)
	periodLock := shared.NewPeriodLock(redisClient, 10*time.Minute)
	costingService := costing.NewService(logger, periodRepo, loader, engine, resultRepo, periodLock)
	recalculateJob := costing.NewRecalculateJob(costingService, logger)

	actualRepo := actuals.NewRepository(pool)
	varianceRepo := variance.NewRepository(pool)
	varianceService := variance.NewService(logger, periodRepo, resultRepo, actualRepo, varianceRepo)
	analyzeJob := variance.NewAnalyzeJob(varianceService, logger, metrics)

	reconRepo := reconciliation.NewRepository(pool)
	reconService := reconciliation.NewService(logger, periodRepo, actualRepo, reconRepo)
	reconcileJob := reconciliation.NewRunJob(reconService, logger)

	tracked := func(name string, handler asynq.HandlerFunc) asynq.HandlerFunc {
		return func(ctx context.Context, task *asynq.Task) error {
			return metrics.Track(name).End(handler(ctx, task))
		}
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCostingRecalculate, Handler: tracked("costing_recalculate", recalculateJob.Handle)},
			{Type: jobs.TaskVarianceAnalyze, Handler: tracked("variance_analyze", analyzeJob.Handle)},
			{Type: jobs.TaskReconciliationRun, Handler: tracked("reconciliation_run", reconcileJob.Handle)},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
