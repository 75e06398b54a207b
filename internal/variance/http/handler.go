package variancehttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/costing"
	"github.com/genka-erp/genka-erp/internal/platform/httpx"
	"github.com/genka-erp/genka-erp/internal/variance"
	"github.com/genka-erp/genka-erp/jobs"
)

// Handler wires variance endpoints. A nil queue disables the async
// analyze path.
type Handler struct {
	logger  *slog.Logger
	service *variance.Service
	queue   *jobs.Client
}

func NewHandler(logger *slog.Logger, service *variance.Service, queue *jobs.Client) *Handler {
	return &Handler{logger: logger, service: service, queue: queue}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/costs/variance", func(r chi.Router) {
		r.Post("/analyze", h.Analyze)
		r.Get("/summary", h.Summary)
		r.Get("/export", h.Export)
		r.Get("/", h.List)
		r.Put("/{id}", h.UpdateReview)
	})
}

type analyzeRequest struct {
	PeriodID         int64            `json:"period_id"`
	ProductIDs       []int64          `json:"product_ids,omitempty"`
	ThresholdPercent *decimal.Decimal `json:"threshold_percent,omitempty"`
	Async            bool             `json:"async,omitempty"`
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if req.Async && h.queue != nil {
		info, err := h.queue.EnqueueVarianceAnalyze(r.Context(), jobs.VarianceAnalyzePayload{
			PeriodID:         req.PeriodID,
			ProductIDs:       req.ProductIDs,
			ThresholdPercent: req.ThresholdPercent,
		})
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": info.ID, "queue": info.Queue})
		return
	}
	result, err := h.service.Analyze(r.Context(), req.PeriodID, req.ProductIDs, req.ThresholdPercent)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	report, err := h.service.Summary(r.Context(), periodID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// Export streams the summary workbook for offline review.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	report, err := h.service.Summary(r.Context(), periodID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	records, err := h.service.List(r.Context(), variance.ListFilters{PeriodID: periodID})
	if err != nil {
		h.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="variance-period-%d.xlsx"`, periodID))
	if err := variance.WriteWorkbook(w, report, records); err != nil {
		h.logger.Error("variance export failed", slog.Any("error", err))
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	filters := variance.ListFilters{PeriodID: periodID}
	if v := r.URL.Query().Get("product_id"); v != "" {
		id, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product_id")
			return
		}
		filters.ProductID = &id
	}
	if v := r.URL.Query().Get("cost_element"); v != "" {
		element := costing.CostElement(v)
		filters.CostElement = &element
	}
	if v := r.URL.Query().Get("is_flagged"); v != "" {
		flagged := v == "true"
		filters.IsFlagged = &flagged
	}
	items, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid record id")
		return
	}
	var update variance.ReviewUpdate
	if err := httpx.DecodeJSON(r, &update); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	record, err := h.service.UpdateReview(r.Context(), id, update)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, variance.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("variance request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
