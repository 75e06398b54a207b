package costinghttp

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/genka-erp/genka-erp/internal/costing"
	"github.com/genka-erp/genka-erp/internal/platform/httpx"
	"github.com/genka-erp/genka-erp/internal/shared"
	"github.com/genka-erp/genka-erp/jobs"
)

// Handler wires the standard cost endpoints. A nil queue disables the
// async calculate path.
type Handler struct {
	logger  *slog.Logger
	service *costing.Service
	queue   *jobs.Client
}

func NewHandler(logger *slog.Logger, service *costing.Service, queue *jobs.Client) *Handler {
	return &Handler{logger: logger, service: service, queue: queue}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/costs/standard", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)
		r.Post("/simulate", h.Simulate)
		r.Post("/copy", h.Copy)
		r.Get("/", h.ListStandardCosts)
		r.Get("/crude-products", h.ListCrudeProductCosts)
	})
}

type calculateRequest struct {
	PeriodID   int64   `json:"period_id"`
	ProductIDs []int64 `json:"product_ids,omitempty"`
	Async      bool    `json:"async,omitempty"`
}

func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if req.Async && h.queue != nil {
		info, err := h.queue.EnqueueRecalculate(r.Context(), jobs.RecalculatePayload{
			PeriodID:   req.PeriodID,
			ProductIDs: req.ProductIDs,
		})
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": info.ID, "queue": info.Queue})
		return
	}
	result, err := h.service.Calculate(r.Context(), req.PeriodID, req.ProductIDs)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type simulateRequest struct {
	PeriodID   int64             `json:"period_id"`
	ProductIDs []int64           `json:"product_ids,omitempty"`
	Overrides  costing.Overrides `json:"overrides"`
}

func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	result, err := h.service.Simulate(r.Context(), req.PeriodID, req.ProductIDs, req.Overrides)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

type copyRequest struct {
	FromPeriodID int64 `json:"from_period_id"`
	ToPeriodID   int64 `json:"to_period_id"`
}

func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	copied, err := h.service.Copy(r.Context(), req.FromPeriodID, req.ToPeriodID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"copied": copied})
}

func (h *Handler) ListStandardCosts(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	var productID *int64
	if v := r.URL.Query().Get("product_id"); v != "" {
		id, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product_id")
			return
		}
		productID = &id
	}
	items, err := h.service.ListStandardCosts(r.Context(), periodID, productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) ListCrudeProductCosts(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	var crudeProductID *int64
	if v := r.URL.Query().Get("crude_product_id"); v != "" {
		id, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid crude_product_id")
			return
		}
		crudeProductID = &id
	}
	items, err := h.service.ListCrudeProductCosts(r.Context(), periodID, crudeProductID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, costing.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period Closed", err.Error())
	case errors.Is(err, costing.ErrCalculationRunning):
		httpx.Problem(w, http.StatusConflict, "Calculation Running", err.Error())
	default:
		h.logger.Error("costing request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
