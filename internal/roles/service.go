package roles

import (
	"context"

	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/authz"
	"github.com/meridian-hr/meridian/internal/shared"
)

// RepositoryPort defines data access methods for role assignments.
type RepositoryPort interface {
	ListAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error)
	UpsertAssignment(ctx context.Context, userID int64, role string, tenantID *uuid.UUID) error
	DeleteAssignment(ctx context.Context, userID int64) error
}

// Invalidator drops cached role resolutions after assignment changes.
type Invalidator interface {
	Invalidate(userID int64)
}

// Service handles role assignment administration.
type Service struct {
	repo     RepositoryPort
	resolver Invalidator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, resolver Invalidator) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// ListRoles returns the canonical roles with their known synonyms.
func (s *Service) ListRoles() []RoleInfo {
	var out []RoleInfo
	for _, role := range authz.CanonicalRoles() {
		out = append(out, RoleInfo{Name: string(role), Synonyms: authz.Synonyms(role)})
	}
	return out
}

// ListAssignments returns one page of stored assignments.
func (s *Service) ListAssignments(ctx context.Context, page, perPage int) ([]Assignment, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	assignments, total, err := s.repo.ListAssignments(ctx, p.PerPage, (p.Page-1)*p.PerPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return assignments, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Assign stores a canonical role for the user. Raw values are normalized
// first; values that do not map onto a known role are rejected so the table
// never accumulates new unknown spellings.
func (s *Service) Assign(ctx context.Context, userID int64, rawRole string, tenantID *uuid.UUID) (Assignment, error) {
	role, known := authz.NormalizeKnown(rawRole)
	if !known {
		return Assignment{}, shared.ErrInvalidInput
	}
	if err := s.repo.UpsertAssignment(ctx, userID, string(role), tenantID); err != nil {
		return Assignment{}, err
	}
	if s.resolver != nil {
		s.resolver.Invalidate(userID)
	}
	return Assignment{UserID: userID, Role: string(role), TenantID: tenantID}, nil
}

// Revoke removes the stored role for the user.
func (s *Service) Revoke(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteAssignment(ctx, userID); err != nil {
		return err
	}
	if s.resolver != nil {
		s.resolver.Invalidate(userID)
	}
	return nil
}
