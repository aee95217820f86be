package profiles

import (
	"context"

	"github.com/meridian-hr/meridian/internal/authz"
)

// SettingsCapabilities describes what a role may do on the settings screens.
type SettingsCapabilities struct {
	ViewSettings         bool
	EditCompanyProfile   bool
	EditPermissionMatrix bool
	ManageIntegrations   bool
	InviteUsers          bool
}

// Settings uses the canonical hierarchy unchanged; no legacy roles ever had
// access here.
var settingsHierarchy = authz.Hierarchy{
	authz.RoleSuperadmin,
	authz.RoleAdmin,
	authz.RoleHRAdmin,
	authz.RoleTeamLead,
	authz.RoleEmployee,
}

var settingsCapabilities = map[authz.Role]SettingsCapabilities{
	authz.RoleSuperadmin: {ViewSettings: true, EditCompanyProfile: true, EditPermissionMatrix: true, ManageIntegrations: true, InviteUsers: true},
	authz.RoleAdmin:      {ViewSettings: true, EditCompanyProfile: true, EditPermissionMatrix: true, ManageIntegrations: true, InviteUsers: true},
	authz.RoleHRAdmin:    {ViewSettings: true, EditCompanyProfile: true, InviteUsers: true},
	authz.RoleTeamLead:   {ViewSettings: true},
	authz.RoleEmployee:   {},
}

var settingsDefault = SettingsCapabilities{}

// Settings resolves the settings profile for a user.
func (s *Service) Settings(ctx context.Context, userID int64) SettingsCapabilities {
	return authz.ResolveProfile(settingsHierarchy, settingsCapabilities, settingsDefault, s.roles.HeldRoles(ctx, userID))
}
