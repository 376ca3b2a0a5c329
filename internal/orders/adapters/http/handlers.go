package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gestorhq/gestor/internal/orders/app"
	"github.com/gestorhq/gestor/internal/orders/app/commands"
	"github.com/gestorhq/gestor/internal/orders/domain"
	"github.com/gestorhq/gestor/internal/orders/ports"
	"github.com/google/uuid"
)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderSubpath)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderSubpath(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.handleOrderByID(w, r, id)
	case len(parts) == 2 && parts[1] == "complete":
		h.transition(w, r, id, h.service.CompleteOrder)
	case len(parts) == 2 && parts[1] == "cancel":
		h.transition(w, r, id, h.service.CancelOrder)
	case len(parts) == 2 && parts[1] == "print":
		h.transition(w, r, id, h.service.PrintOrder)
	case len(parts) == 2 && parts[1] == "items":
		h.addItem(w, r, id)
	case len(parts) == 3 && parts[1] == "items":
		h.removeItem(w, r, id, parts[2])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.getOrder(w, r, id)
	case http.MethodPut:
		h.updateOrder(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CreateOrder(ctx, payload.toCommand())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID.String(),
	}

	if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
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
	filter.Page = intQuery(r, "page")
	filter.PageSize = intQuery(r, "page_size")

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var payload updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.UpdateOrderDetails(r.Context(), id,
		payload.DeliveryDate, payload.Notes, payload.DeliveryAddressRef,
		payload.FiscalDataRef, payload.RequiresFiscalReceipt)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, id uuid.UUID, apply func(ctx context.Context, id uuid.UUID) (*domain.Order, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	order, err := apply(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload commands.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.AddItem(r.Context(), id, payload)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request, id uuid.UUID, rawItemID string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	itemID, err := uuid.Parse(rawItemID)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	order, err := h.service.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

type createOrderRequest struct {
	CustomerID            uuid.UUID            `json:"customer_id"`
	Type                  domain.OrderType     `json:"type"`
	DeliveryDate          *time.Time           `json:"delivery_date,omitempty"`
	Notes                 string               `json:"notes,omitempty"`
	DeliveryAddressRef    string               `json:"delivery_address_ref,omitempty"`
	FiscalDataRef         string               `json:"fiscal_data_ref,omitempty"`
	RequiresFiscalReceipt bool                 `json:"requires_fiscal_receipt"`
	Items                 []commands.ItemInput `json:"items"`
}

func (p createOrderRequest) toCommand() commands.CreateOrderCommand {
	return commands.CreateOrderCommand{
		CustomerID:            p.CustomerID,
		Type:                  p.Type,
		DeliveryDate:          p.DeliveryDate,
		Notes:                 p.Notes,
		DeliveryAddressRef:    p.DeliveryAddressRef,
		FiscalDataRef:         p.FiscalDataRef,
		RequiresFiscalReceipt: p.RequiresFiscalReceipt,
		Items:                 p.Items,
	}
}

type updateOrderRequest struct {
	DeliveryDate          *time.Time `json:"delivery_date,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	DeliveryAddressRef    string     `json:"delivery_address_ref,omitempty"`
	FiscalDataRef         string     `json:"fiscal_data_ref,omitempty"`
	RequiresFiscalReceipt bool       `json:"requires_fiscal_receipt"`
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
	var lifecycleErr *domain.LifecycleError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, ports.ErrVersionConflict):
		writeError(w, http.StatusConflict, "order was modified concurrently, retry")
	case errors.As(err, &lifecycleErr):
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
