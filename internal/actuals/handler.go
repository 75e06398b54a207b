package actuals

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/genka-erp/genka-erp/internal/platform/httpx"
)

const maxImportSize = 16 << 20

type Handler struct {
	logger   *slog.Logger
	service  *Service
	importer *Importer
}

func NewHandler(logger *slog.Logger, service *Service, importer *Importer) *Handler {
	return &Handler{logger: logger, service: service, importer: importer}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/costs/actual", func(r chi.Router) {
		r.Get("/", h.ListActualCosts)
		r.Post("/", h.Record)
		r.Get("/crude-products", h.ListCrudeProductActualCosts)
		r.Post("/crude-products", h.RecordCrudeProduct)
		r.Post("/import", h.Import)
	})
}

func (h *Handler) ListActualCosts(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.service.ListActualCosts(r.Context(), periodID, productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) ListCrudeProductActualCosts(w http.ResponseWriter, r *http.Request) {
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
	items, err := h.service.ListCrudeProductActualCosts(r.Context(), periodID, crudeProductID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var cost ActualCost
	if err := httpx.DecodeJSON(r, &cost); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.service.Record(r.Context(), cost); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"recorded": true})
}

func (h *Handler) RecordCrudeProduct(w http.ResponseWriter, r *http.Request) {
	var cost CrudeProductActualCost
	if err := httpx.DecodeJSON(r, &cost); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.service.RecordCrudeProduct(r.Context(), cost); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"recorded": true})
}

// Import ingests an xlsx of product actual costs. The file arrives as
// multipart form field "file"; period_id and source_system ride along
// as form values.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid multipart form")
		return
	}
	periodID, err := strconv.ParseInt(r.FormValue("period_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "period_id is required")
		return
	}
	sourceSystem := r.FormValue("source_system")
	if sourceSystem == "" {
		sourceSystem = "kanjyo_bugyo"
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "file is required")
		return
	}
	defer file.Close()

	result, err := h.importer.ImportProductActuals(r.Context(), periodID, sourceSystem, file)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidImport):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Import", err.Error())
	default:
		h.logger.Error("actual costs request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
