package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// ExpenseCapabilities describes what a role may do with expense claims.
type ExpenseCapabilities struct {
	SubmitOwn        bool
	ViewAll          bool
	ViewTeam         bool
	ViewOwn          bool
	Approve          bool
	MarkPaid         bool
	ExportReports    bool
	ManageCategories bool
}

// The finance controller outranks HR here: paying out claims is a finance
// responsibility, not an HR one.
var expenseHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	RoleFinanceController,
	authz.RoleHRAdmin,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var expenseCapabilities = map[authz.Role]ExpenseCapabilities{
	authz.RoleSuperadmin:  {SubmitOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, MarkPaid: true, ExportReports: true, ManageCategories: true},
	authz.RoleAdmin:       {SubmitOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, MarkPaid: true, ExportReports: true, ManageCategories: true},
	RoleFinanceController: {SubmitOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, MarkPaid: true, ExportReports: true},
	authz.RoleHRAdmin:     {SubmitOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, ExportReports: true},
	authz.RoleTeamLead:    {SubmitOwn: true, ViewTeam: true, ViewOwn: true, Approve: true},
	authz.RoleEmployee:    {SubmitOwn: true, ViewOwn: true},
}

var expenseDefault = ExpenseCapabilities{ViewOwn: true}

// Expenses resolves the expense profile for a user.
func (s *Service) Expenses(ctx context.Context, userID int64) ExpenseCapabilities {
	return authz.ResolveProfile(expenseHierarchy, expenseCapabilities, expenseDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may open the claim.
func (c ExpenseCapabilities) CanView(viewer Viewer, rec Record) bool {
	if c.ViewAll {
		return true
	}
	if c.ViewOwn && rec.OwnerID == viewer.UserID {
		return true
	}
	if c.ViewTeam && sameTeam(viewer, rec) {
		return true
	}
	return sharedWith(viewer, rec)
}

// CanApprove reports whether the viewer may approve the claim. Self-approval
// is forbidden regardless of role.
func (c ExpenseCapabilities) CanApprove(viewer Viewer, rec Record) bool {
	if !c.Approve {
		return false
	}
	return rec.OwnerID != viewer.UserID
}

// CanMarkPaid reports whether the viewer may settle the claim. The payer may
// not settle a claim they submitted themselves.
func (c ExpenseCapabilities) CanMarkPaid(viewer Viewer, rec Record) bool {
	if !c.MarkPaid {
		return false
	}
	return rec.OwnerID != viewer.UserID
}
