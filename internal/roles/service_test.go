package roles

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/shared"
)

type memoryRepo struct {
	mu          sync.Mutex
	assignments map[int64]Assignment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{assignments: make(map[int64]Assignment)}
}

func (r *memoryRepo) ListAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Assignment, 0, len(r.assignments))
	for _, a := range r.assignments {
		out = append(out, a)
	}
	return out, len(r.assignments), nil
}

func (r *memoryRepo) UpsertAssignment(ctx context.Context, userID int64, role string, tenantID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[userID] = Assignment{UserID: userID, Role: role, TenantID: tenantID}
	return nil
}

func (r *memoryRepo) DeleteAssignment(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.assignments, userID)
	return nil
}

type invalidations struct {
	mu  sync.Mutex
	ids []int64
}

func (i *invalidations) Invalidate(userID int64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, userID)
}

func TestAssignNormalizesRole(t *testing.T) {
	repo := newMemoryRepo()
	inv := &invalidations{}
	svc := NewService(repo, inv)

	got, err := svc.Assign(context.Background(), 7, "Teamleiter", nil)
	require.NoError(t, err)
	require.Equal(t, "team_lead", got.Role)
	require.Equal(t, "team_lead", repo.assignments[7].Role)
	require.Equal(t, []int64{7}, inv.ids)
}

func TestAssignRejectsUnknownRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Assign(context.Background(), 7, "contractor", nil)
	require.ErrorIs(t, err, shared.ErrInvalidInput)
	require.Empty(t, repo.assignments)
}

func TestRevokeInvalidatesResolution(t *testing.T) {
	repo := newMemoryRepo()
	repo.assignments[7] = Assignment{UserID: 7, Role: "admin"}
	inv := &invalidations{}
	svc := NewService(repo, inv)

	require.NoError(t, svc.Revoke(context.Background(), 7))
	require.Empty(t, repo.assignments)
	require.Equal(t, []int64{7}, inv.ids)
}

func TestListRolesCoversCanonicalSet(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	roles := svc.ListRoles()
	require.Len(t, roles, 5)
	require.Equal(t, "superadmin", roles[0].Name)
	byName := make(map[string][]string)
	for _, r := range roles {
		byName[r.Name] = r.Synonyms
	}
	require.Contains(t, byName["team_lead"], "teamleiter")
	require.Contains(t, byName["employee"], "mitarbeiter")
}

func TestListAssignmentsPagination(t *testing.T) {
	repo := newMemoryRepo()
	for i := int64(1); i <= 45; i++ {
		repo.assignments[i] = Assignment{UserID: i, Role: "employee"}
	}
	svc := NewService(repo, nil)

	_, page, err := svc.ListAssignments(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, shared.DefaultPerPage, page.PerPage)
	require.Equal(t, 45, page.Total)
	require.Equal(t, 3, page.TotalPages)

	_, page, err = svc.ListAssignments(context.Background(), 1, 5000)
	require.NoError(t, err)
	require.Equal(t, shared.MaxPerPage, page.PerPage)
}
