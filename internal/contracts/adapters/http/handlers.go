// Package http exposes the contract endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gestorhq/gestor/internal/contracts/app"
	"github.com/gestorhq/gestor/internal/contracts/app/commands"
	"github.com/gestorhq/gestor/internal/contracts/domain"
	"github.com/gestorhq/gestor/internal/contracts/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the contract handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/contracts", h.handleContracts)
	mux.HandleFunc("/v1/contracts/", h.handleContractSubpath)
}

func (h *Handler) handleContracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createContract(w, r)
	case http.MethodGet:
		h.listContracts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleContractSubpath(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/contracts/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}

	if len(parts) == 1 {
		h.handleContractByID(w, r, id)
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.transition(w, r, id, parts[1])
}

func (h *Handler) handleContractByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.getContract(w, r, id)
	case http.MethodPut:
		h.updateContract(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createContract(w http.ResponseWriter, r *http.Request) {
	var payload contractRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	contract, err := h.service.CreateContract(r.Context(), payload.toCommand())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"contract": contract})
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	contract, err := h.service.GetContract(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contract": contract})
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{
		NearExpiration: r.URL.Query().Get("near_expiration") == "true",
		Page:           intQuery(r, "page"),
		PageSize:       intQuery(r, "page_size"),
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.ContractStatus(statusParam)
		filter.Status = &status
	}
	if customerParam := r.URL.Query().Get("customer_id"); customerParam != "" {
		customerID, err := uuid.Parse(customerParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		filter.CustomerID = &customerID
	}

	contracts, err := h.service.ListContracts(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contracts": contracts})
}

func (h *Handler) updateContract(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var payload contractRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	contract, err := h.service.UpdateContract(r.Context(), id, payload.toCommand())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contract": contract})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, id uuid.UUID, action string) {
	var payload transitionRequest
	if r.Body != nil {
		// Transition bodies are optional; decode errors on empty bodies are ignored.
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	ctx := r.Context()

	var (
		contract *domain.Contract
		err      error
	)

	switch action {
	case "confirm":
		contract, err = h.service.ConfirmContract(ctx, id, payload.By)
	case "sign":
		contract, err = h.service.SignContract(ctx, id, payload.By, payload.SignedDate)
	case "suspend":
		contract, err = h.service.SuspendContract(ctx, id, payload.By)
	case "cancel":
		contract, err = h.service.CancelContract(ctx, id, payload.By)
	case "complete":
		contract, err = h.service.CompleteContract(ctx, id, payload.By)
	case "renew":
		if payload.NewEndDate == nil {
			writeError(w, http.StatusBadRequest, "new_end_date is required")
			return
		}
		contract, err = h.service.RenewContract(ctx, id, payload.By, *payload.NewEndDate)
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contract": contract})
}

type contractRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	OrderID     *uuid.UUID      `json:"order_id,omitempty"`
	TotalValue  decimal.Decimal `json:"total_value"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Terms       string          `json:"terms,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

func (p contractRequest) toCommand() commands.CreateContractCommand {
	return commands.CreateContractCommand{
		Title:       p.Title,
		Description: p.Description,
		CustomerID:  p.CustomerID,
		OrderID:     p.OrderID,
		TotalValue:  p.TotalValue,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Terms:       p.Terms,
		Notes:       p.Notes,
		CreatedBy:   p.CreatedBy,
	}
}

type transitionRequest struct {
	By         string     `json:"by,omitempty"`
	SignedDate *time.Time `json:"signed_date,omitempty"`
	NewEndDate *time.Time `json:"new_end_date,omitempty"`
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
	var transitionErr *domain.TransitionError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "contract not found")
	case errors.Is(err, ports.ErrDuplicateNumber):
		writeError(w, http.StatusConflict, "contract number already in use, retry")
	case errors.As(err, &transitionErr):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
