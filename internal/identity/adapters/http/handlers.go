// Package http exposes the identity administration endpoints.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gestorhq/gestor/internal/identity/domain"
	"github.com/gestorhq/gestor/internal/identity/ports"
	"github.com/google/uuid"
)

type Handler struct {
	store ports.IdentityStore
}

func NewHandler(store ports.IdentityStore) *Handler {
	return &Handler{store: store}
}

// Register binds the identity handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/identity/users", h.handleUsers)
	mux.HandleFunc("/v1/identity/users/", h.handleUserSubpath)
	mux.HandleFunc("/v1/identity/roles", h.handleRoles)
	mux.HandleFunc("/v1/identity/roles/", h.handleRoleByName)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createUser(w, r)
	case http.MethodGet:
		h.listUsers(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleUserSubpath(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/identity/users/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.handleUserByID(w, r, id)
	case len(parts) == 2 && parts[1] == "roles":
		h.handleUserRoles(w, r, id)
	case len(parts) == 3 && parts[1] == "roles":
		h.removeUserRole(w, r, id, parts[2])
	case len(parts) == 2 && parts[1] == "claims":
		h.handleUserClaims(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		h.getUser(w, r, id)
	case http.MethodPut:
		h.updateUser(w, r, id)
	case http.MethodDelete:
		h.deleteUser(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user := domain.NewUser(payload.UserName, payload.Email)
	user.DisplayName = payload.DisplayName
	if payload.Active != nil {
		user.Active = *payload.Active
	}

	if err := user.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Succeeded {
		writeResult(w, result)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "result": result})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var payload userRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user := domain.User{
		ID:          id,
		UserName:    payload.UserName,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		Active:      true,
	}
	if payload.Active != nil {
		user.Active = *payload.Active
	}

	if err := user.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respond(w, r, func() (domain.Result, error) {
		return h.store.UpdateUser(r.Context(), user)
	})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.respond(w, r, func() (domain.Result, error) {
		return h.store.DeleteUser(r.Context(), id)
	})
}

func (h *Handler) handleUserRoles(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload roleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}

	h.respond(w, r, func() (domain.Result, error) {
		return h.store.AddUserToRole(r.Context(), id, payload.Role)
	})
}

func (h *Handler) removeUserRole(w http.ResponseWriter, r *http.Request, id uuid.UUID, role string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.respond(w, r, func() (domain.Result, error) {
		return h.store.RemoveUserFromRole(r.Context(), id, role)
	})
}

func (h *Handler) handleUserClaims(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodPost:
		var claim domain.Claim
		if err := json.NewDecoder(r.Body).Decode(&claim); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if err := claim.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respond(w, r, func() (domain.Result, error) {
			return h.store.AddClaim(r.Context(), id, claim)
		})
	case http.MethodDelete:
		claim := domain.Claim{
			Type:  r.URL.Query().Get("type"),
			Value: r.URL.Query().Get("value"),
		}
		if err := claim.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respond(w, r, func() (domain.Result, error) {
			return h.store.RemoveClaim(r.Context(), id, claim)
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		role := domain.Role{ID: uuid.New(), Name: payload.Name, CreatedAt: time.Now().UTC()}
		result, err := h.store.CreateRole(r.Context(), role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !result.Succeeded {
			writeResult(w, result)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"role": role, "result": result})
	case http.MethodGet:
		roles, err := h.store.ListRoles(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleRoleByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/identity/roles/"), "/")
	if name == "" {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}

	h.respond(w, r, func() (domain.Result, error) {
		return h.store.DeleteRole(r.Context(), name)
	})
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, op func() (domain.Result, error)) {
	result, err := op()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Succeeded {
		writeResult(w, result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

// writeResult surfaces a rejected store outcome. Missing principals map to
// 404, everything else to 400.
func writeResult(w http.ResponseWriter, result domain.Result) {
	status := http.StatusBadRequest
	for _, description := range result.Errors {
		if strings.Contains(description, "not found") {
			status = http.StatusNotFound
			break
		}
	}
	writeJSON(w, status, map[string]any{"result": result})
}

type userRequest struct {
	UserName    string `json:"user_name"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Active      *bool  `json:"active,omitempty"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
