// Package handler exposes the reconciliation engine over HTTP for the
// form UI and other collaborators.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pankas/internal/contractor/service"
	dErrors "pankas/pkg/domain-errors"
)

// Handler carries the HTTP surface of the contractor module.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

// New builds a handler around the reconciliation service.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the contractor routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/contractors/{companyID}/reconcile", h.reconcile)
	r.Get("/contractors/{companyID}", h.get)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	force := r.URL.Query().Get("force") == "true"

	result, err := h.svc.Reconcile(r.Context(), companyID, force)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.Get(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, record)
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Only
// invalid identifiers and total lookup failures ever reach here from
// Reconcile; everything else was degraded inside the service.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case dErrors.CodeInvalidIdentifier:
		status = http.StatusBadRequest
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeLookupFailed:
		status = http.StatusBadGateway
	case dErrors.CodeConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, r, status, errorResponse{Code: string(code), Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.ErrorContext(r.Context(), "response encode failed", "error", err)
	}
}
