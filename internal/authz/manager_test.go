package authz

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/shared"
)

type memAudit struct {
	mu      sync.Mutex
	records []shared.AuditLog
}

func (a *memAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, log)
	return nil
}

func (a *memAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.records))
	for i, r := range a.records {
		out[i] = r.Action
	}
	return out
}

func newTestManager(store *memStore) (*Manager, *Resolver, *memAudit) {
	resolver := NewResolver(store, testLogger())
	audit := &memAudit{}
	return NewManager(store, resolver, audit, testLogger()), resolver, audit
}

func TestActivatePreview(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	m, resolver, audit := newTestManager(store)
	ctx := context.Background()

	require.Equal(t, RoleSuperadmin, resolver.EffectiveRole(ctx, 1))

	require.NoError(t, m.ActivatePreview(ctx, 1, RoleTeamLead))
	require.Equal(t, RoleTeamLead, resolver.EffectiveRole(ctx, 1))
	require.Equal(t, []string{shared.AuditPreviewActivated}, audit.actions())
}

func TestActivatePreviewRequiresSuperadmin(t *testing.T) {
	store := newMemStore()
	store.assignments[2] = []Assignment{{Role: "admin"}}
	m, _, audit := newTestManager(store)

	err := m.ActivatePreview(context.Background(), 2, RoleEmployee)
	require.ErrorIs(t, err, ErrNotPermitted)
	require.Empty(t, audit.actions())
}

func TestActivatePreviewRejectsUnknownRole(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	m, _, _ := newTestManager(store)

	err := m.ActivatePreview(context.Background(), 1, Role("auditor"))
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestPreviewingSuperadminCanSwitchRoles(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	m, resolver, _ := newTestManager(store)
	ctx := context.Background()

	require.NoError(t, m.ActivatePreview(ctx, 1, RoleEmployee))
	require.Equal(t, RoleEmployee, resolver.EffectiveRole(ctx, 1))

	// The precondition reads the original identity, not the previewed one.
	require.NoError(t, m.ActivatePreview(ctx, 1, RoleHRAdmin))
	require.Equal(t, RoleHRAdmin, resolver.EffectiveRole(ctx, 1))
}

func TestDeactivatePreviewIsIdempotent(t *testing.T) {
	store := newMemStore()
	m, resolver, audit := newTestManager(store)
	ctx := context.Background()

	require.NoError(t, m.DeactivatePreview(ctx, 3))
	require.NoError(t, m.DeactivatePreview(ctx, 3))
	require.Equal(t, RoleEmployee, resolver.EffectiveRole(ctx, 3))
	require.Equal(t, []string{shared.AuditPreviewCleared, shared.AuditPreviewCleared}, audit.actions())
}

func TestActivateImpersonation(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	m, _, audit := newTestManager(store)
	ctx := context.Background()

	require.NoError(t, m.ActivateImpersonation(ctx, 1, tenant))
	require.Equal(t, []string{shared.AuditImpersonationActivated}, audit.actions())
	require.True(t, store.impersonations[1].Active)
	require.Equal(t, tenant, store.impersonations[1].TenantID)
}

func TestActivateImpersonationRequiresTenant(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	m, _, _ := newTestManager(store)

	err := m.ActivateImpersonation(context.Background(), 1, uuid.Nil)
	require.ErrorIs(t, err, ErrTenantRequired)
}

func TestActivateImpersonationRequiresSuperadmin(t *testing.T) {
	store := newMemStore()
	store.assignments[2] = []Assignment{{Role: "hr_admin"}}
	m, _, _ := newTestManager(store)

	err := m.ActivateImpersonation(context.Background(), 2, uuid.New())
	require.ErrorIs(t, err, ErrNotPermitted)
}

func TestMutationSurfacesStoreReadFailure(t *testing.T) {
	store := newMemStore()
	store.assignments[1] = []Assignment{{Role: "superadmin"}}
	store.failReads = true
	m, _, _ := newTestManager(store)

	err := m.ActivatePreview(context.Background(), 1, RoleEmployee)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotPermitted)
}

func TestDeactivateImpersonationInvalidatesCache(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	store.assignments[5] = []Assignment{{Role: "hr"}}
	store.impersonations[5] = ImpersonationSession{UserID: 5, TenantID: tenant, Active: true}
	m, resolver, _ := newTestManager(store)
	ctx := context.Background()

	// No assignment in the impersonated tenant: operator fallback applies.
	require.Equal(t, RoleAdmin, resolver.EffectiveRole(ctx, 5))

	require.NoError(t, m.DeactivateImpersonation(ctx, 5))
	require.Equal(t, RoleHRAdmin, resolver.EffectiveRole(ctx, 5))
	require.NotContains(t, store.impersonations, int64(5))
}
