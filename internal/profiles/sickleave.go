package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// SickLeaveCapabilities describes what a role may do with sick notes.
// Medical detail is deliberately separate from the report itself: a team
// lead learns that someone is out, not why.
type SickLeaveCapabilities struct {
	ReportOwn         bool
	ViewAll           bool
	ViewTeam          bool
	ViewOwn           bool
	ViewMedicalDetail bool
	Acknowledge       bool
	ManagePolicies    bool
}

// "hr" survives here as a first-class value: legacy tenants still assign it
// and their HR staff handle sick notes without the full hr_admin grant.
var sickLeaveHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	authz.RoleHRAdmin,
	RoleHR,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var sickLeaveCapabilities = map[authz.Role]SickLeaveCapabilities{
	authz.RoleSuperadmin: {ReportOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, ViewMedicalDetail: true, Acknowledge: true, ManagePolicies: true},
	authz.RoleAdmin:      {ReportOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Acknowledge: true, ManagePolicies: true},
	authz.RoleHRAdmin:    {ReportOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, ViewMedicalDetail: true, Acknowledge: true, ManagePolicies: true},
	RoleHR:               {ReportOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, ViewMedicalDetail: true, Acknowledge: true},
	authz.RoleTeamLead:   {ReportOwn: true, ViewTeam: true, ViewOwn: true, Acknowledge: true},
	authz.RoleEmployee:   {ReportOwn: true, ViewOwn: true},
}

var sickLeaveDefault = SickLeaveCapabilities{ReportOwn: true, ViewOwn: true}

// SickLeave resolves the sick leave profile for a user.
func (s *Service) SickLeave(ctx context.Context, userID int64) SickLeaveCapabilities {
	return authz.ResolveProfile(sickLeaveHierarchy, sickLeaveCapabilities, sickLeaveDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may see the sick note at all.
func (c SickLeaveCapabilities) CanView(viewer Viewer, rec Record) bool {
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

// CanAcknowledge reports whether the viewer may confirm receipt of the note.
// Acknowledging one's own note is meaningless and therefore forbidden.
func (c SickLeaveCapabilities) CanAcknowledge(viewer Viewer, rec Record) bool {
	if !c.Acknowledge {
		return false
	}
	return rec.OwnerID != viewer.UserID
}
