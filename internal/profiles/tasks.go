package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// TaskCapabilities describes what a role may do on the task boards.
type TaskCapabilities struct {
	CreateTask   bool
	AssignOthers bool
	ViewAll      bool
	ViewTeam     bool
	ViewOwn      bool
	CloseAny     bool
	CloseOwn     bool
	ManageBoards bool
}

var taskHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	authz.RoleHRAdmin,
	RoleManager,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var taskCapabilities = map[authz.Role]TaskCapabilities{
	authz.RoleSuperadmin: {CreateTask: true, AssignOthers: true, ViewAll: true, ViewTeam: true, ViewOwn: true, CloseAny: true, CloseOwn: true, ManageBoards: true},
	authz.RoleAdmin:      {CreateTask: true, AssignOthers: true, ViewAll: true, ViewTeam: true, ViewOwn: true, CloseAny: true, CloseOwn: true, ManageBoards: true},
	authz.RoleHRAdmin:    {CreateTask: true, AssignOthers: true, ViewAll: true, ViewTeam: true, ViewOwn: true, CloseAny: true, CloseOwn: true},
	RoleManager:          {CreateTask: true, AssignOthers: true, ViewTeam: true, ViewOwn: true, CloseAny: true, CloseOwn: true},
	authz.RoleTeamLead:   {CreateTask: true, AssignOthers: true, ViewTeam: true, ViewOwn: true, CloseOwn: true},
	authz.RoleEmployee:   {CreateTask: true, ViewOwn: true, CloseOwn: true},
}

var taskDefault = TaskCapabilities{ViewOwn: true}

// Tasks resolves the task board profile for a user.
func (s *Service) Tasks(ctx context.Context, userID int64) TaskCapabilities {
	return authz.ResolveProfile(taskHierarchy, taskCapabilities, taskDefault, s.roles.HeldRoles(ctx, userID))
}

// CanView reports whether the viewer may open the task.
func (c TaskCapabilities) CanView(viewer Viewer, rec Record) bool {
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

// CanClose reports whether the viewer may close the task.
func (c TaskCapabilities) CanClose(viewer Viewer, rec Record) bool {
	if c.CloseAny {
		return true
	}
	return c.CloseOwn && rec.OwnerID == viewer.UserID
}
