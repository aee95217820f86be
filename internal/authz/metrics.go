package authz

// Metrics receives authorization telemetry. The observability package
// provides the Prometheus implementation; tests use the no-op default.
type Metrics interface {
	Decision(module string, allowed bool)
	RoleCoerced()
	ResolutionCacheHit()
	ResolutionCacheMiss()
}

type nopMetrics struct{}

func (nopMetrics) Decision(string, bool) {}
func (nopMetrics) RoleCoerced()          {}
func (nopMetrics) ResolutionCacheHit()   {}
func (nopMetrics) ResolutionCacheMiss()  {}
