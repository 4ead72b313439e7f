package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
)

// Handler exposes the stock-ledger and transfer HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/items", h.createItem)
		r.Get("/items", h.listItems)

		// stock-status?resource_id=… for one resource, no param for the
		// global rollup, /all for the map view.
		r.Get("/stock-status", h.stockStatus)
		r.Get("/stock-status/all", h.allLocations)

		r.Post("/transfers", h.createTransfer)
		r.Get("/transfers", h.listTransfers)
		r.Post("/transfers/{id}/complete", h.completeTransfer)
		r.Post("/transfers/{id}/cancel", h.cancelTransfer)
	})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	item, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, items)
}

func (h *Handler) stockStatus(w http.ResponseWriter, r *http.Request) {
	if resourceID := r.URL.Query().Get("resource_id"); resourceID != "" {
		levels, err := h.service.ResourceStockLevels(r.Context(), resourceID)
		if err != nil {
			respondError(w, err)
			return
		}
		respond(w, http.StatusOK, levels)
		return
	}
	levels, err := h.service.AggregatedStockLevels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, levels)
}

func (h *Handler) allLocations(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.service.AllLocationsStockLevels(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, stocks)
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := h.service.CreateTransfer(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, t)
}

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.service.ListTransfers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, transfers)
}

func (h *Handler) completeTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.CompleteTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) cancelTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.CancelTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case apperr.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrInsufficientQuantity):
		code = http.StatusConflict
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
