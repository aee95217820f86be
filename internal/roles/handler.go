package roles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/authz"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
	"github.com/meridian-hr/meridian/internal/shared"
)

// Handler manages role assignment administration endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		guard:    guard,
		validate: validator.New(),
	}
}

// MountRoutes registers role administration routes. Reads require the
// permissions module to be visible; writes additionally require the edit
// action.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireVisible())
		r.Get("/roles", h.listRoles)
		r.Get("/assignments", h.listAssignments)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAction(authz.ActionEdit))
		r.Put("/assignments/{userID}", h.assign)
		r.Delete("/assignments/{userID}", h.revoke)
	})
}

type assignRequest struct {
	Role     string  `json:"role" validate:"required"`
	TenantID *string `json:"tenant_id,omitempty" validate:"omitempty,uuid"`
}

type assignmentResponse struct {
	UserID   int64   `json:"user_id"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id,omitempty"`
}

type assignmentPage struct {
	Assignments []assignmentResponse `json:"assignments"`
	Page        int                  `json:"page"`
	PerPage     int                  `json:"per_page"`
	Total       int                  `json:"total"`
	TotalPages  int                  `json:"total_pages"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ListRoles())
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	assignments, pagination, err := h.service.ListAssignments(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	out := assignmentPage{
		Assignments: make([]assignmentResponse, len(assignments)),
		Page:        pagination.Page,
		PerPage:     pagination.PerPage,
		Total:       pagination.Total,
		TotalPages:  pagination.TotalPages,
	}
	for i, a := range assignments {
		out.Assignments[i] = toAssignmentResponse(a)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user id must be numeric")
		return
	}

	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var tenantID *uuid.UUID
	if req.TenantID != nil {
		id, err := uuid.Parse(*req.TenantID)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tenant_id must be a UUID")
			return
		}
		tenantID = &id
	}

	assignment, err := h.service.Assign(r.Context(), userID, req.Role, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		h.logger.Error("assign role", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentResponse(assignment))
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user id must be numeric")
		return
	}
	if err := h.service.Revoke(r.Context(), userID); err != nil {
		h.logger.Error("revoke role", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toAssignmentResponse(a Assignment) assignmentResponse {
	out := assignmentResponse{UserID: a.UserID, Role: a.Role}
	if a.TenantID != nil {
		id := a.TenantID.String()
		out.TenantID = &id
	}
	return out
}
