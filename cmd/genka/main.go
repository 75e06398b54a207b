package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/app"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	"github.com/genka-erp/genka-erp/internal/costing"
	costinghttp "github.com/genka-erp/genka-erp/internal/costing/http"
	"github.com/genka-erp/genka-erp/internal/masterdata/contractors"
	"github.com/genka-erp/genka-erp/internal/masterdata/costcenters"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/observability"
	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/platform/db"
	"github.com/genka-erp/genka-erp/internal/reconciliation"
	"github.com/genka-erp/genka-erp/internal/shared"
	"github.com/genka-erp/genka-erp/internal/variance"
	variancehttp "github.com/genka-erp/genka-erp/internal/variance/http"
	"github.com/genka-erp/genka-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if err := db.Migrate(ctx, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	queue, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect task queue", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	materialRepo := materials.NewRepository(dbpool)
	materialHandler := materials.NewHandler(logger, materials.NewService(materialRepo))

	crudeRepo := crudeproducts.NewRepository(dbpool)
	crudeHandler := crudeproducts.NewHandler(logger, crudeproducts.NewService(crudeRepo))

	productRepo := products.NewRepository(dbpool)
	productHandler := products.NewHandler(logger, products.NewService(productRepo))

	centerRepo := costcenters.NewRepository(dbpool)
	centerHandler := costcenters.NewHandler(logger, costcenters.NewService(centerRepo))

	contractorRepo := contractors.NewRepository(dbpool)
	contractorHandler := contractors.NewHandler(logger, contractors.NewService(contractorRepo))

	periodRepo := periods.NewRepository(dbpool)
	periodHandler := periods.NewHandler(logger, periods.NewService(periodRepo))

	bomRepo := bom.NewRepository(dbpool)
	bomHandler := bom.NewHandler(logger, bom.NewService(bomRepo))

	ruleRepo := allocation.NewRepository(dbpool)
	ruleHandler := allocation.NewHandler(logger, allocation.NewService(ruleRepo))

	budgetRepo := budget.NewRepository(dbpool)
	budgetHandler := budget.NewHandler(logger, budget.NewService(budgetRepo))

	loader := costing.NewLoader(materialRepo, crudeRepo, productRepo, centerRepo, bomRepo, budgetRepo, ruleRepo)
	engine := costing.NewEngine(logger, cfg.CostingWorkers)
	resultRepo := costing.NewResultRepository(dbpool)
	periodLock := shared.NewPeriodLock(redisClient, 10*time.Minute)
	costingService := costing.NewService(logger, periodRepo, loader, engine, resultRepo, periodLock)
	costingHandler := costinghttp.NewHandler(logger, costingService, queue)

	actualRepo := actuals.NewRepository(dbpool)
	actualService := actuals.NewService(actualRepo)
	importer := actuals.NewImporter(logger, productRepo, actualRepo)
	actualHandler := actuals.NewHandler(logger, actualService, importer)

	varianceRepo := variance.NewRepository(dbpool)
	varianceService := variance.NewService(logger, periodRepo, resultRepo, actualRepo, varianceRepo)
	varianceHandler := variancehttp.NewHandler(logger, varianceService, queue)

	reconRepo := reconciliation.NewRepository(dbpool)
	reconService := reconciliation.NewService(logger, periodRepo, actualRepo, reconRepo)
	reconHandler := reconciliation.NewHandler(logger, reconService, queue)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,

		MaterialsHandler:      materialHandler,
		CrudeProductsHandler:  crudeHandler,
		ProductsHandler:       productHandler,
		CostCentersHandler:    centerHandler,
		ContractorsHandler:    contractorHandler,
		PeriodsHandler:        periodHandler,
		BOMHandler:            bomHandler,
		AllocationHandler:     ruleHandler,
		BudgetHandler:         budgetHandler,
		CostingHandler:        costingHandler,
		ActualsHandler:        actualHandler,
		VarianceHandler:       varianceHandler,
		ReconciliationHandler: reconHandler,

		JobHandler: jobHandler,
		Metrics:    metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
