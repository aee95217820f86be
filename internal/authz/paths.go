package authz

import "strings"

// pathModules maps registered UI base paths to module identifier aliases.
// The first alias is the canonical module id used by the default-visibility
// tables; the rest are historical naming conventions still present in
// customer matrices.
var pathModules = map[string][]string{
	"/":                     {"dashboard"},
	"/dashboard":            {"dashboard"},
	"/employees":            {"employees", "staff"},
	"/orgchart":             {"org_chart", "organigramm"},
	"/documents":            {"documents", "dokumente"},
	"/expenses":             {"expenses", "spesen"},
	"/expenses/reports":     {"expense_reports"},
	"/sick-leave":           {"sick_leave", "krankmeldungen"},
	"/travel":               {"business_travel", "dienstreisen"},
	"/mobility":             {"global_mobility"},
	"/tasks":                {"tasks", "aufgaben"},
	"/budget":               {"budget", "forecast"},
	"/payroll":              {"payroll", "lohnabrechnung"},
	"/reports":              {"reports"},
	"/settings":             {"settings"},
	"/settings/permissions": {"permission_matrix"},
}

// authExemptPrefixes are identity surfaces that are never permission gated.
var authExemptPrefixes = []string{"/auth", "/account"}

// FindBasePath resolves a request path to its registered base path: exact
// match first, then the longest registered prefix that is a path ancestor.
// The root path participates only via exact match so unmapped deep paths do
// not inherit its permissions.
func FindBasePath(requestPath string) (string, bool) {
	path := cleanRequestPath(requestPath)
	if path == "" {
		return "", false
	}
	if _, ok := pathModules[path]; ok {
		return path, true
	}
	best := ""
	for prefix := range pathModules {
		if prefix == "/" {
			continue
		}
		if strings.HasPrefix(path, prefix+"/") && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// ModuleAliases returns the module identifiers registered for a base path.
func ModuleAliases(basePath string) []string {
	aliases := pathModules[basePath]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}

// CanonicalModule returns the primary module id for a base path, or "".
func CanonicalModule(basePath string) string {
	if aliases := pathModules[basePath]; len(aliases) > 0 {
		return aliases[0]
	}
	return ""
}

// IsAuthExempt reports whether the path belongs to the identity surface.
func IsAuthExempt(requestPath string) bool {
	path := cleanRequestPath(requestPath)
	for _, prefix := range authExemptPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func cleanRequestPath(requestPath string) string {
	path := strings.TrimSpace(requestPath)
	if path == "" {
		return ""
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
