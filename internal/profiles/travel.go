package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// TravelCapabilities describes what a role may do with business travel
// requests.
type TravelCapabilities struct {
	RequestOwn  bool
	ViewAll     bool
	ViewTeam    bool
	ViewOwn     bool
	Approve     bool
	Book        bool
	ExportCosts bool
}

var travelHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	RoleFinanceController,
	authz.RoleHRAdmin,
	RoleManager,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var travelCapabilities = map[authz.Role]TravelCapabilities{
	authz.RoleSuperadmin:  {RequestOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, Book: true, ExportCosts: true},
	authz.RoleAdmin:       {RequestOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, Book: true, ExportCosts: true},
	RoleFinanceController: {RequestOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, ExportCosts: true},
	authz.RoleHRAdmin:     {RequestOwn: true, ViewAll: true, ViewTeam: true, ViewOwn: true, Approve: true, Book: true},
	RoleManager:           {RequestOwn: true, ViewTeam: true, ViewOwn: true, Approve: true},
	authz.RoleTeamLead:    {RequestOwn: true, ViewTeam: true, ViewOwn: true, Approve: true},
	authz.RoleEmployee:    {RequestOwn: true, ViewOwn: true},
}

var travelDefault = TravelCapabilities{ViewOwn: true}

// Travel resolves the business travel profile for a user.
func (s *Service) Travel(ctx context.Context, userID int64) TravelCapabilities {
	return authz.ResolveProfile(travelHierarchy, travelCapabilities, travelDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may open the travel request.
func (c TravelCapabilities) CanView(viewer Viewer, rec Record) bool {
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

// CanApprove reports whether the viewer may approve the request; travellers
// never approve their own trips.
func (c TravelCapabilities) CanApprove(viewer Viewer, rec Record) bool {
	if !c.Approve {
		return false
	}
	return rec.OwnerID != viewer.UserID
}
