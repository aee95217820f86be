package profiles

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hr/meridian/internal/authz"
)

// staticRoles returns fixed held values regardless of user.
type staticRoles []string

func (s staticRoles) HeldRoles(ctx context.Context, userID int64) []string {
	return []string(s)
}

func TestDocumentProfiles(t *testing.T) {
	ctx := context.Background()

	svc := NewService(staticRoles{"hr_admin"})
	caps := svc.Documents(ctx, 1)
	require.True(t, caps.ViewAll)
	require.True(t, caps.Approve)
	require.False(t, caps.Delete)

	svc = NewService(staticRoles{"manager"})
	caps = svc.Documents(ctx, 1)
	require.False(t, caps.ViewAll)
	require.True(t, caps.ViewTeam)
	require.True(t, caps.Approve)

	svc = NewService(staticRoles{"totally_unknown"})
	caps = svc.Documents(ctx, 1)
	require.Equal(t, documentDefault, caps)
}

func TestDocumentRecordChecks(t *testing.T) {
	viewer := Viewer{UserID: 10, TeamID: 3}

	lead := documentCapabilities[RoleManager]
	require.True(t, lead.CanView(viewer, Record{OwnerID: 11, TeamID: 3}))
	require.False(t, lead.CanView(viewer, Record{OwnerID: 11, TeamID: 4}))
	require.True(t, lead.CanView(viewer, Record{OwnerID: 11, TeamID: 4, SharedWith: []int64{10}}))

	employee := documentCapabilities[authz.RoleEmployee]
	require.True(t, employee.CanView(viewer, Record{OwnerID: 10}))
	require.False(t, employee.CanView(viewer, Record{OwnerID: 11, TeamID: 3}))
}

func TestSelfApprovalBlocked(t *testing.T) {
	viewer := Viewer{UserID: 10, TeamID: 3}
	own := Record{OwnerID: 10, TeamID: 3}
	other := Record{OwnerID: 11, TeamID: 3}

	docs := documentCapabilities[RoleManager]
	require.False(t, docs.CanApprove(viewer, own))
	require.True(t, docs.CanApprove(viewer, other))

	expenses := expenseCapabilities[RoleFinanceController]
	require.False(t, expenses.CanApprove(viewer, own))
	require.False(t, expenses.CanMarkPaid(viewer, own))
	require.True(t, expenses.CanMarkPaid(viewer, other))

	sick := sickLeaveCapabilities[RoleHR]
	require.False(t, sick.CanAcknowledge(viewer, own))
	require.True(t, sick.CanAcknowledge(viewer, other))

	travel := travelCapabilities[RoleManager]
	require.False(t, travel.CanApprove(viewer, own))
	require.True(t, travel.CanApprove(viewer, other))
}

func TestExpenseHierarchyPrefersFinanceController(t *testing.T) {
	ctx := context.Background()
	svc := NewService(staticRoles{"finance_controller", "hr_admin"})

	caps := svc.Expenses(ctx, 1)
	require.True(t, caps.MarkPaid, "finance controller outranks hr_admin for expenses")

	caps = NewService(staticRoles{"hr_admin"}).Expenses(ctx, 1)
	require.False(t, caps.MarkPaid)
	require.True(t, caps.Approve)
}

func TestSickLeaveMedicalDetail(t *testing.T) {
	ctx := context.Background()

	require.True(t, NewService(staticRoles{"hr"}).SickLeave(ctx, 1).ViewMedicalDetail)
	require.False(t, NewService(staticRoles{"admin"}).SickLeave(ctx, 1).ViewMedicalDetail)
	require.False(t, NewService(staticRoles{"team_lead"}).SickLeave(ctx, 1).ViewMedicalDetail)
	require.True(t, NewService(staticRoles{"team_lead"}).SickLeave(ctx, 1).Acknowledge)
}

func TestMobilityHasNoTeamNotion(t *testing.T) {
	ctx := context.Background()
	caps := NewService(staticRoles{"employee"}).Mobility(ctx, 1)

	viewer := Viewer{UserID: 10, TeamID: 3}
	require.True(t, caps.CanView(viewer, Record{OwnerID: 10, TeamID: 3}))
	require.False(t, caps.CanView(viewer, Record{OwnerID: 11, TeamID: 3}))

	// Team leads hold no extra grant here, but they resolve to their own
	// row rather than falling off the hierarchy.
	lead := NewService(staticRoles{"team_lead"}).Mobility(ctx, 1)
	require.Equal(t, mobilityCapabilities[authz.RoleTeamLead], lead)
	require.False(t, lead.ViewAll)
	require.True(t, lead.ViewOwn)
}

func TestTasksCloseRules(t *testing.T) {
	viewer := Viewer{UserID: 10}

	lead := taskCapabilities[RoleManager]
	require.True(t, lead.CanClose(viewer, Record{OwnerID: 99}))

	employee := taskCapabilities[authz.RoleEmployee]
	require.True(t, employee.CanClose(viewer, Record{OwnerID: 10}))
	require.False(t, employee.CanClose(viewer, Record{OwnerID: 99}))
}

func TestSettingsMostRestrictiveDefault(t *testing.T) {
	ctx := context.Background()

	require.Equal(t, SettingsCapabilities{}, NewService(staticRoles{"employee"}).Settings(ctx, 1))
	require.Equal(t, SettingsCapabilities{}, NewService(staticRoles{"weird_value"}).Settings(ctx, 1))
	require.True(t, NewService(staticRoles{"hr_admin"}).Settings(ctx, 1).InviteUsers)
	require.False(t, NewService(staticRoles{"hr_admin"}).Settings(ctx, 1).EditPermissionMatrix)
}

func TestLegacyHeldValuesResolve(t *testing.T) {
	ctx := context.Background()

	// A bare legacy "hr" assignment resolves to the first-class hr row in
	// the domains that still rank it, never the stronger hr_admin one.
	held := staticRoles{"hr"}
	require.True(t, NewService(held).SickLeave(ctx, 1).ViewAll)
	require.False(t, NewService(held).SickLeave(ctx, 1).ManagePolicies)
	require.True(t, NewService(held).Mobility(ctx, 1).OpenCase)
	require.False(t, NewService(held).Mobility(ctx, 1).Approve)

	// Only a genuinely held canonical value outranks it.
	both := staticRoles{"hr", "hr_admin"}
	require.True(t, NewService(both).Mobility(ctx, 1).Approve)
}

// assignmentStore is the minimal read surface for driving the real resolver.
type assignmentStore map[int64][]authz.Assignment

func (s assignmentStore) RoleAssignments(ctx context.Context, userID int64) ([]authz.Assignment, error) {
	return s[userID], nil
}

func (s assignmentStore) ActivePreview(ctx context.Context, userID int64) (*authz.PreviewSession, error) {
	return nil, nil
}

func (s assignmentStore) ActiveImpersonation(ctx context.Context, userID int64) (*authz.ImpersonationSession, error) {
	return nil, nil
}

func (s assignmentStore) MatrixEntries(ctx context.Context, role authz.Role) ([]authz.MatrixEntry, error) {
	return nil, nil
}

func TestLegacyAssignmentThroughResolver(t *testing.T) {
	ctx := context.Background()
	store := assignmentStore{1: {{Role: "hr"}}}
	resolver := authz.NewResolver(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewService(resolver)

	sick := svc.SickLeave(ctx, 1)
	require.True(t, sick.ViewMedicalDetail)
	require.False(t, sick.ManagePolicies, "legacy hr must not inherit the hr_admin row")

	mobility := svc.Mobility(ctx, 1)
	require.True(t, mobility.ManageVisaDocs)
	require.False(t, mobility.Approve)
}

func requireCompleteDomain[T any](t *testing.T, domain string, hierarchy authz.Hierarchy, table map[authz.Role]T) {
	t.Helper()
	for _, role := range authz.CanonicalRoles() {
		require.Contains(t, hierarchy, role, "%s hierarchy missing %s", domain, role)
		_, ok := table[role]
		require.True(t, ok, "%s table missing %s", domain, role)
	}
	for _, role := range hierarchy {
		_, ok := table[role]
		require.True(t, ok, "%s table missing hierarchy role %s", domain, role)
	}
}

func TestDomainTablesCoverCanonicalRoles(t *testing.T) {
	requireCompleteDomain(t, "documents", documentHierarchy, documentCapabilities)
	requireCompleteDomain(t, "expenses", expenseHierarchy, expenseCapabilities)
	requireCompleteDomain(t, "sick_leave", sickLeaveHierarchy, sickLeaveCapabilities)
	requireCompleteDomain(t, "business_travel", travelHierarchy, travelCapabilities)
	requireCompleteDomain(t, "global_mobility", mobilityHierarchy, mobilityCapabilities)
	requireCompleteDomain(t, "tasks", taskHierarchy, taskCapabilities)
	requireCompleteDomain(t, "settings", settingsHierarchy, settingsCapabilities)
}
