package authz

// Default visibility applies when no matrix entry exists for any alias of a
// module. This table is the single source of truth for "new module added,
// matrix not yet configured".

// hrAdminHiddenByDefault is the short deny-list for hr_admin; everything
// else is visible to them by default.
var hrAdminHiddenByDefault = map[string]struct{}{
	"budget":            {},
	"permission_matrix": {},
}

// teamLeadVisibleByDefault is the allow-list for team leads.
var teamLeadVisibleByDefault = map[string]struct{}{
	"dashboard":       {},
	"employees":       {},
	"org_chart":       {},
	"documents":       {},
	"expenses":        {},
	"expense_reports": {},
	"sick_leave":      {},
	"business_travel": {},
	"tasks":           {},
	"reports":         {},
}

// employeeVisibleByDefault is the allow-list for plain employees.
var employeeVisibleByDefault = map[string]struct{}{
	"dashboard":       {},
	"documents":       {},
	"expenses":        {},
	"sick_leave":      {},
	"business_travel": {},
	"tasks":           {},
}

// defaultVisible answers the fallback visibility question for a canonical
// module id. Unknown roles were normalized before this point, so the
// employee arm doubles as the fail-closed default.
func defaultVisible(role Role, module string) bool {
	switch role {
	case RoleSuperadmin, RoleAdmin:
		return true
	case RoleHRAdmin:
		_, hidden := hrAdminHiddenByDefault[module]
		return !hidden
	case RoleTeamLead:
		_, ok := teamLeadVisibleByDefault[module]
		return ok
	default:
		_, ok := employeeVisibleByDefault[module]
		return ok
	}
}
