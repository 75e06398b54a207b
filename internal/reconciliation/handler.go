package reconciliation

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/genka-erp/genka-erp/internal/platform/httpx"
	"github.com/genka-erp/genka-erp/jobs"
)

// Handler wires cross-system reconciliation endpoints. A nil queue
// disables the async run path.
type Handler struct {
	logger  *slog.Logger
	service *Service
	queue   *jobs.Client
}

func NewHandler(logger *slog.Logger, service *Service, queue *jobs.Client) *Handler {
	return &Handler{logger: logger, service: service, queue: queue}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/costs/reconciliation", func(r chi.Router) {
		r.Post("/run", h.Run)
		r.Get("/summary", h.Summary)
		r.Get("/", h.List)
	})
}

type runRequest struct {
	PeriodID  int64            `json:"period_id"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
	Async     bool             `json:"async,omitempty"`
}

func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if req.Async && h.queue != nil {
		info, err := h.queue.EnqueueReconcile(r.Context(), jobs.ReconcilePayload{
			PeriodID:  req.PeriodID,
			Threshold: req.Threshold,
		})
		if err != nil {
			h.respondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"task_id": info.ID, "queue": info.Queue})
		return
	}
	results, err := h.service.Run(r.Context(), req.PeriodID, req.Threshold)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"summary": Summarize(req.PeriodID, results),
		"items":   results,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	items, err := h.service.List(r.Context(), periodID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	periodID, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	summary, err := h.service.Summary(r.Context(), periodID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("reconciliation request failed", "error", err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
}
