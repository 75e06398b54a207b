package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/genka-erp/genka-erp/internal/actuals"
	"github.com/genka-erp/genka-erp/internal/allocation"
	"github.com/genka-erp/genka-erp/internal/bom"
	"github.com/genka-erp/genka-erp/internal/budget"
	costinghttp "github.com/genka-erp/genka-erp/internal/costing/http"
	"github.com/genka-erp/genka-erp/internal/masterdata/contractors"
	"github.com/genka-erp/genka-erp/internal/masterdata/costcenters"
	"github.com/genka-erp/genka-erp/internal/masterdata/crudeproducts"
	"github.com/genka-erp/genka-erp/internal/masterdata/materials"
	"github.com/genka-erp/genka-erp/internal/masterdata/products"
	"github.com/genka-erp/genka-erp/internal/observability"
	"github.com/genka-erp/genka-erp/internal/periods"
	"github.com/genka-erp/genka-erp/internal/reconciliation"
	variancehttp "github.com/genka-erp/genka-erp/internal/variance/http"
	"github.com/genka-erp/genka-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	MaterialsHandler      *materials.Handler
	CrudeProductsHandler  *crudeproducts.Handler
	ProductsHandler       *products.Handler
	CostCentersHandler    *costcenters.Handler
	ContractorsHandler    *contractors.Handler
	PeriodsHandler        *periods.Handler
	BOMHandler            *bom.Handler
	AllocationHandler     *allocation.Handler
	BudgetHandler         *budget.Handler
	CostingHandler        *costinghttp.Handler
	ActualsHandler        *actuals.Handler
	VarianceHandler       *variancehttp.Handler
	ReconciliationHandler *reconciliation.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with the shared middleware chain
// and mounts every domain handler under the API root.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		if params.MaterialsHandler != nil {
			params.MaterialsHandler.MountRoutes(api)
		}
		if params.CrudeProductsHandler != nil {
			params.CrudeProductsHandler.MountRoutes(api)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(api)
		}
		if params.CostCentersHandler != nil {
			params.CostCentersHandler.MountRoutes(api)
		}
		if params.ContractorsHandler != nil {
			params.ContractorsHandler.MountRoutes(api)
		}
		if params.PeriodsHandler != nil {
			params.PeriodsHandler.MountRoutes(api)
		}
		if params.BOMHandler != nil {
			params.BOMHandler.MountRoutes(api)
		}
		if params.AllocationHandler != nil {
			params.AllocationHandler.MountRoutes(api)
		}
		if params.BudgetHandler != nil {
			params.BudgetHandler.MountRoutes(api)
		}
		if params.CostingHandler != nil {
			params.CostingHandler.MountRoutes(api)
		}
		if params.ActualsHandler != nil {
			params.ActualsHandler.MountRoutes(api)
		}
		if params.VarianceHandler != nil {
			params.VarianceHandler.MountRoutes(api)
		}
		if params.ReconciliationHandler != nil {
			params.ReconciliationHandler.MountRoutes(api)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
