package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// DocumentCapabilities describes what a role may do in the document archive.
type DocumentCapabilities struct {
	ViewAll          bool
	ViewTeam         bool
	ViewOwn          bool
	Upload           bool
	Edit             bool
	Delete           bool
	Approve          bool
	ManageCategories bool
}

var documentHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	authz.RoleHRAdmin,
	RoleManager,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var documentCapabilities = map[authz.Role]DocumentCapabilities{
	authz.RoleSuperadmin: {ViewAll: true, ViewTeam: true, ViewOwn: true, Upload: true, Edit: true, Delete: true, Approve: true, ManageCategories: true},
	authz.RoleAdmin:      {ViewAll: true, ViewTeam: true, ViewOwn: true, Upload: true, Edit: true, Delete: true, Approve: true, ManageCategories: true},
	authz.RoleHRAdmin:    {ViewAll: true, ViewTeam: true, ViewOwn: true, Upload: true, Edit: true, Approve: true, ManageCategories: true},
	RoleManager:          {ViewTeam: true, ViewOwn: true, Upload: true, Edit: true, Approve: true},
	authz.RoleTeamLead:   {ViewTeam: true, ViewOwn: true, Upload: true},
	authz.RoleEmployee:   {ViewOwn: true, Upload: true},
}

// documentDefault is what an unrecognized role gets: own documents only.
var documentDefault = DocumentCapabilities{ViewOwn: true}

// Documents resolves the document profile for a user.
func (s *Service) Documents(ctx context.Context, userID int64) DocumentCapabilities {
	return authz.ResolveProfile(documentHierarchy, documentCapabilities, documentDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may open the document.
func (c DocumentCapabilities) CanView(viewer Viewer, rec Record) bool {
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

// CanEdit reports whether the viewer may modify the document.
func (c DocumentCapabilities) CanEdit(viewer Viewer, rec Record) bool {
	if !c.Edit {
		return false
	}
	return c.ViewAll || rec.OwnerID == viewer.UserID || (c.ViewTeam && sameTeam(viewer, rec))
}

// CanApprove reports whether the viewer may approve the document. Approving
// one's own submission is always forbidden.
func (c DocumentCapabilities) CanApprove(viewer Viewer, rec Record) bool {
	if !c.Approve {
		return false
	}
	return rec.OwnerID != viewer.UserID
}
