package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hr/meridian/internal/authz"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

// Handler manages the employee directory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers user routes. Listing requires the employees module
// to be visible for the caller's effective role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireVisible())
		r.Get("/", h.listUsers)
	})
}

type userResponse struct {
	ID          int64                `json:"id"`
	Email       string               `json:"email"`
	Name        string               `json:"name"`
	IsActive    bool                 `json:"is_active"`
	Assignments []assignmentResponse `json:"assignments"`
}

type assignmentResponse struct {
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id,omitempty"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]userResponse, len(users))
	for i, user := range users {
		resp := userResponse{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			IsActive:    user.IsActive,
			Assignments: make([]assignmentResponse, len(user.Assignments)),
		}
		for j, a := range user.Assignments {
			ar := assignmentResponse{Role: a.Role}
			if a.TenantID != nil {
				id := a.TenantID.String()
				ar.TenantID = &id
			}
			resp.Assignments[j] = ar
		}
		out[i] = resp
	}
	httpx.JSON(w, http.StatusOK, out)
}
