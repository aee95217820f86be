package authz

import (
	"sort"
	"strings"
)

// Role is the canonical access level governing authorization decisions.
type Role string

// Canonical roles, strongest first.
const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleHRAdmin    Role = "hr_admin"
	RoleTeamLead   Role = "team_lead"
	RoleEmployee   Role = "employee"
)

// CanonicalRoles returns the closed role set, strongest first.
func CanonicalRoles() []Role {
	return []Role{RoleSuperadmin, RoleAdmin, RoleHRAdmin, RoleTeamLead, RoleEmployee}
}

// IsCanonical reports whether role belongs to the closed canonical set.
func IsCanonical(role Role) bool {
	switch role {
	case RoleSuperadmin, RoleAdmin, RoleHRAdmin, RoleTeamLead, RoleEmployee:
		return true
	}
	return false
}

// roleSynonyms maps folded legacy spellings onto canonical roles. The stored
// data carries more than a decade of naming conventions, including German
// labels from the original rollout.
var roleSynonyms = map[string]Role{
	"superadmin":    RoleSuperadmin,
	"super_admin":   RoleSuperadmin,
	"admin":         RoleAdmin,
	"administrator": RoleAdmin,
	"hr_admin":      RoleHRAdmin,
	"hr":            RoleHRAdmin,
	"hr_manager":    RoleHRAdmin,
	"team_lead":     RoleTeamLead,
	"teamlead":      RoleTeamLead,
	"teamleiter":    RoleTeamLead,
	"employee":      RoleEmployee,
	"user":          RoleEmployee,
	"mitarbeiter":   RoleEmployee,
}

// Normalize coerces an arbitrary stored role value onto the canonical set.
// It is total: anything unrecognized resolves to the weakest role.
func Normalize(raw string) Role {
	role, _ := NormalizeKnown(raw)
	return role
}

// NormalizeKnown behaves like Normalize and additionally reports whether the
// input was recognized. Callers use the flag to emit coercion diagnostics;
// the result is never an error.
func NormalizeKnown(raw string) (Role, bool) {
	key := NormalizeKey(raw)
	if key == "" {
		return RoleEmployee, false
	}
	if role, ok := roleSynonyms[key]; ok {
		return role, true
	}
	if strings.HasPrefix(key, "personal") {
		return RoleHRAdmin, true
	}
	if strings.Contains(key, "lead") || strings.Contains(key, "leiter") {
		return RoleTeamLead, true
	}
	return RoleEmployee, false
}

// domainRoles are stored values that some permission profiles rank as
// first-class hierarchy entries with their own capability rows. Held values
// carry them verbatim, without the canonical form they would otherwise
// normalize to, so the profile's own entry stays reachable.
var domainRoles = map[string]struct{}{
	"hr":                 {},
	"manager":            {},
	"finance_controller": {},
}

// Synonyms returns the known legacy spellings that normalize onto role,
// excluding the canonical name itself. The result is sorted.
func Synonyms(role Role) []string {
	var out []string
	for raw, target := range roleSynonyms {
		if target == role && raw != string(role) {
			out = append(out, raw)
		}
	}
	sort.Strings(out)
	return out
}
