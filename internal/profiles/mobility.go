package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// MobilityCapabilities describes what a role may do with global mobility
// cases (relocations, postings, visa processes).
type MobilityCapabilities struct {
	ViewAll        bool
	ViewOwn        bool
	OpenCase       bool
	ManageVisaDocs bool
	Approve        bool
	ExportCases    bool
}

// Mobility has no team notion: cases concern individuals and the HR staff
// steering them. Team leads still get an entry (every table covers the
// whole canonical set) but no grant beyond their own case.
var mobilityHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	authz.RoleHRAdmin,
	RoleHR,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var mobilityCapabilities = map[authz.Role]MobilityCapabilities{
	authz.RoleSuperadmin: {ViewAll: true, ViewOwn: true, OpenCase: true, ManageVisaDocs: true, Approve: true, ExportCases: true},
	authz.RoleAdmin:      {ViewAll: true, ViewOwn: true, OpenCase: true, ManageVisaDocs: true, Approve: true, ExportCases: true},
	authz.RoleHRAdmin:    {ViewAll: true, ViewOwn: true, OpenCase: true, ManageVisaDocs: true, Approve: true, ExportCases: true},
	RoleHR:               {ViewAll: true, ViewOwn: true, OpenCase: true, ManageVisaDocs: true},
	authz.RoleTeamLead:   {ViewOwn: true},
	authz.RoleEmployee:   {ViewOwn: true},
}

var mobilityDefault = MobilityCapabilities{ViewOwn: true}

// Mobility resolves the global mobility profile for a user.
func (s *Service) Mobility(ctx context.Context, userID int64) MobilityCapabilities {
	return authz.ResolveProfile(mobilityHierarchy, mobilityCapabilities, mobilityDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may open the mobility case.
func (c MobilityCapabilities) CanView(viewer Viewer, rec Record) bool {
	if c.ViewAll {
		return true
	}
	if c.ViewOwn && rec.OwnerID == viewer.UserID {
		return true
	}
	return sharedWith(viewer, rec)
}

// CanApprove reports whether the viewer may approve the case; the relocating
// employee never approves their own case.
func (c MobilityCapabilities) CanApprove(viewer Viewer, rec Record) bool {
	if !c.Approve {
		return false
	}
	return rec.OwnerID != viewer.UserID
}
