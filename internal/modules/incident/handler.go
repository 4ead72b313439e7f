package incident

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
)

// Handler exposes the incident routing endpoint invoked by the
// incident-ingestion collaborator whenever a new incident is created.
type Handler struct{ router *Router }

func NewHandler(router *Router) *Handler { return &Handler{router: router} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/incidents", func(r chi.Router) {
		r.Post("/route", h.route)
		r.Get("/publish-failures", h.publishFailures)
	})
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	var req RouteIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := h.router.Route(r.Context(), req)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case apperr.IsValidation(err):
			code = http.StatusBadRequest
		case errors.Is(err, apperr.ErrNotFound):
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) publishFailures(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]int64{"publish_failures": h.router.PublishFailures()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
