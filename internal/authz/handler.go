package authz

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler exposes the operator-facing mutation endpoints and the decision
// check endpoint consumed by UI route guards.
type Handler struct {
	logger   *slog.Logger
	manager  *Manager
	guard    *Guard
	resolver *Resolver
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, manager *Manager, guard *Guard, resolver *Resolver) *Handler {
	return &Handler{
		logger:   logger,
		manager:  manager,
		guard:    guard,
		resolver: resolver,
		validate: validator.New(),
	}
}

// MountRoutes registers authorization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.activatePreview)
	r.Delete("/preview", h.deactivatePreview)
	r.Post("/impersonation", h.activateImpersonation)
	r.Delete("/impersonation", h.deactivateImpersonation)
	r.Get("/check", h.check)
	r.Get("/role", h.effectiveRole)
}

type mutationResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type previewRequest struct {
	Role string `json:"role" validate:"required"`
}

type impersonationRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
}

func (h *Handler) activatePreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, mutationResult{Success: false, Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, mutationResult{Success: false, Error: "role is required"})
		return
	}
	role, known := NormalizeKnown(req.Role)
	if !known {
		h.respondMutation(w, ErrUnknownRole)
		return
	}
	h.respondMutation(w, h.manager.ActivatePreview(r.Context(), userID, role))
}

func (h *Handler) deactivatePreview(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	h.respondMutation(w, h.manager.DeactivatePreview(r.Context(), userID))
}

func (h *Handler) activateImpersonation(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	var req impersonationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, mutationResult{Success: false, Error: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.JSON(w, http.StatusBadRequest, mutationResult{Success: false, Error: "tenant_id must be a uuid"})
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, mutationResult{Success: false, Error: ErrTenantRequired.Error()})
		return
	}
	h.respondMutation(w, h.manager.ActivateImpersonation(r.Context(), userID, tenantID))
}

func (h *Handler) deactivateImpersonation(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	h.respondMutation(w, h.manager.DeactivateImpersonation(r.Context(), userID))
}

type checkResponse struct {
	Path          string `json:"path"`
	Visible       bool   `json:"visible"`
	Action        string `json:"action,omitempty"`
	ActionAllowed *bool  `json:"action_allowed,omitempty"`
}

// check answers visibility (and optionally an action) for the current user,
// letting client route guards ask before navigating.
func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path query parameter required")
		return
	}
	resp := checkResponse{
		Path:    path,
		Visible: h.guard.ModuleVisible(r.Context(), userID, path),
	}
	if action := r.URL.Query().Get("action"); action != "" {
		allowed := h.guard.ModuleAction(r.Context(), userID, path, action)
		resp.Action = action
		resp.ActionAllowed = &allowed
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) effectiveRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	role := h.resolver.EffectiveRole(r.Context(), userID)
	httpx.JSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

// respondMutation maps mutation outcomes onto the {success, error?} shape the
// operator UI consumes. Precondition failures are results, not transport
// errors; only storage failures surface as 500s.
func (h *Handler) respondMutation(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, mutationResult{Success: true})
	case errors.Is(err, ErrNotPermitted), errors.Is(err, ErrUnknownRole), errors.Is(err, ErrTenantRequired):
		httpx.JSON(w, http.StatusForbidden, mutationResult{Success: false, Error: err.Error()})
	default:
		if h.logger != nil {
			h.logger.Error("authz: session mutation", slog.Any("error", err))
		}
		httpx.JSON(w, http.StatusInternalServerError, mutationResult{Success: false, Error: "internal error"})
	}
}
