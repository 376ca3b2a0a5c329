// Package http exposes the customer endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gestorhq/gestor/internal/customers/app"
	"github.com/gestorhq/gestor/internal/customers/domain"
	"github.com/gestorhq/gestor/internal/customers/ports"
	"github.com/google/uuid"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the customer handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/customers", h.handleCustomers)
	mux.HandleFunc("/v1/customers/", h.handleCustomerByID)
}

func (h *Handler) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createCustomer(w, r)
	case http.MethodGet:
		h.listCustomers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	rawID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/customers/"), "/")
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getCustomer(w, r, id)
	case http.MethodPut:
		h.updateCustomer(w, r, id)
	case http.MethodDelete:
		h.deleteCustomer(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), payload.toInput())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"customer": customer})
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{
		Search:   r.URL.Query().Get("search"),
		Page:     intQuery(r, "page"),
		PageSize: intQuery(r, "page_size"),
	}

	customers, err := h.service.ListCustomers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var payload customerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), id, payload.toInput())
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeDomainError(w, err)
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customerRequest struct {
	FirstName          string              `json:"first_name"`
	LastName           string              `json:"last_name,omitempty"`
	Email              string              `json:"email,omitempty"`
	Phone              string              `json:"phone,omitempty"`
	DocumentType       domain.DocumentType `json:"document_type,omitempty"`
	DocumentNumber     string              `json:"document_number,omitempty"`
	ExternalContactRef string              `json:"external_contact_ref,omitempty"`
}

func (p customerRequest) toInput() app.CustomerInput {
	return app.CustomerInput{
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Email:              p.Email,
		Phone:              p.Phone,
		DocumentType:       p.DocumentType,
		DocumentNumber:     p.DocumentNumber,
		ExternalContactRef: p.ExternalContactRef,
	}
}

func intQuery(r *http.Request, key string) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return 0
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
