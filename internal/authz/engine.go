package authz

// Hierarchy is a domain's ordered role list, strongest first. Domains may
// permute the canonical roles and interleave their own first-class values
// such as "manager" or "finance_controller".
type Hierarchy []Role

// ResolveRole returns the first hierarchy role among the held values, or the
// weakest hierarchy role when none match. Held values arrive
// precedence-ordered from the resolver, so an active preview session has
// already replaced the direct assignments.
func (h Hierarchy) ResolveRole(held []string) Role {
	if len(h) == 0 {
		return RoleEmployee
	}
	for _, role := range h {
		for _, v := range held {
			if NormalizeKey(v) == string(role) {
				return role
			}
		}
	}
	return h[len(h)-1]
}

// ResolveProfile resolves a domain capability struct: the shared engine
// behind every domain permission table. Each domain supplies only its
// hierarchy, its role table and a most-restrictive fallback; the table must
// cover every hierarchy role, and the fallback covers anything it misses.
func ResolveProfile[T any](h Hierarchy, table map[Role]T, fallback T, held []string) T {
	if profile, ok := table[h.ResolveRole(held)]; ok {
		return profile
	}
	return fallback
}
