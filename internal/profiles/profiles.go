// Package profiles defines the per-domain permission tables of the
// application. Every domain supplies an ordered role hierarchy, a complete
// role to capability-struct table and a most-restrictive default; the shared
// resolution engine in internal/authz does the rest.
package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// Domain-recognized roles that predate the canonical set. Within their
// domain's hierarchy they are first-class values, not synonyms.
const (
	RoleHR                = authz.Role("hr")
	RoleManager           = authz.Role("manager")
	RoleFinanceController = authz.Role("finance_controller")
)

// RoleSource supplies the precedence-ordered role values a user holds,
// preview and impersonation already applied. Satisfied by *authz.Resolver.
type RoleSource interface {
	HeldRoles(ctx context.Context, userID int64) []string
}

// Service resolves domain capability profiles for users.
type Service struct {
	roles RoleSource
}

// NewService builds a profile Service.
func NewService(roles RoleSource) *Service {
	return &Service{roles: roles}
}

// Viewer identifies the acting user for record-level checks.
type Viewer struct {
	UserID int64
	TeamID int64
}

// Record carries the ownership facts record-level checks need.
type Record struct {
	OwnerID    int64
	TeamID     int64
	SharedWith []int64
}

func sharedWith(viewer Viewer, rec Record) bool {
	for _, id := range rec.SharedWith {
		if id == viewer.UserID {
			return true
		}
	}
	return false
}

func sameTeam(viewer Viewer, rec Record) bool {
	return viewer.TeamID != 0 && viewer.TeamID == rec.TeamID
}
