package authz

import (
	"context"
	"log/slog"
	"sync"
)

// Well-known action names used across matrix entries and route guards.
const (
	ActionView    = "view"
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionDelete  = "delete"
	ActionApprove = "approve"
	ActionExport  = "export"
)

// Guard answers the two generic decision questions every route guard and API
// call-site asks: is this module visible, and is this action allowed. All
// ambiguity resolves toward denial.
type Guard struct {
	resolver *Resolver
	matrix   MatrixSource
	logger   *slog.Logger
	metrics  Metrics

	// unmapped paths are logged once each to surface configuration gaps
	// without flooding the log.
	unmappedSeen sync.Map
}

// NewGuard constructs a Guard. The matrix source is typically the PGStore or
// its redis-cached decorator.
func NewGuard(resolver *Resolver, matrix MatrixSource, logger *slog.Logger, metrics Metrics) *Guard {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Guard{resolver: resolver, matrix: matrix, logger: logger, metrics: metrics}
}

// ModuleVisible decides whether the user may see the UI surface at path.
func (g *Guard) ModuleVisible(ctx context.Context, userID int64, requestPath string) bool {
	return g.VisibleForRole(ctx, g.resolver.EffectiveRole(ctx, userID), requestPath)
}

// VisibleForRole is ModuleVisible for an already-resolved role, used when a
// request pass resolves once and fans out over many links.
func (g *Guard) VisibleForRole(ctx context.Context, role Role, requestPath string) bool {
	if role == RoleSuperadmin {
		return g.observe("superadmin_bypass", true)
	}
	if IsAuthExempt(requestPath) {
		return true
	}
	base, ok := FindBasePath(requestPath)
	if !ok {
		g.logUnmapped(requestPath)
		return g.observe("unmapped", false)
	}

	entries := g.entriesByModule(ctx, role)
	module := CanonicalModule(base)

	// Explicit denial on any alias wins over any other alias allowing:
	// historical naming conventions for one module may disagree, and a stale
	// alias must not leak privilege.
	anyTrue := false
	for _, alias := range ModuleAliases(base) {
		entry, found := entries[NormalizeKey(alias)]
		if !found {
			continue
		}
		if !entry.Visible {
			return g.observe(module, false)
		}
		anyTrue = true
	}
	if anyTrue {
		return g.observe(module, true)
	}
	return g.observe(module, defaultVisible(role, module))
}

// ModuleAction decides whether the user may perform action on the module at
// path. Unlike visibility there is no fallback heuristic: action checks have
// no safe default and must be explicit in the matrix.
func (g *Guard) ModuleAction(ctx context.Context, userID int64, requestPath, action string) bool {
	return g.ActionForRole(ctx, g.resolver.EffectiveRole(ctx, userID), requestPath, action)
}

// ActionForRole is ModuleAction for an already-resolved role.
func (g *Guard) ActionForRole(ctx context.Context, role Role, requestPath, action string) bool {
	if role == RoleSuperadmin {
		return g.observe("superadmin_bypass", true)
	}
	base, ok := FindBasePath(requestPath)
	if !ok {
		g.logUnmapped(requestPath)
		return g.observe("unmapped", false)
	}

	entries := g.entriesByModule(ctx, role)
	module := CanonicalModule(base)
	want := NormalizeKey(action)
	for _, alias := range ModuleAliases(base) {
		entry, found := entries[NormalizeKey(alias)]
		if !found {
			continue
		}
		for _, allowed := range entry.Actions {
			if NormalizeKey(allowed) == want {
				return g.observe(module, true)
			}
		}
	}
	return g.observe(module, false)
}

// entriesByModule loads the role's matrix rows keyed by normalized module
// name. A failed read degrades to "no entries configured".
func (g *Guard) entriesByModule(ctx context.Context, role Role) map[string]MatrixEntry {
	entries, err := g.matrix.MatrixEntries(ctx, role)
	if err != nil {
		g.logger.Warn("authz: read permission matrix", slog.String("role", string(role)), slog.Any("error", err))
		return nil
	}
	byModule := make(map[string]MatrixEntry, len(entries))
	for _, e := range entries {
		key := NormalizeKey(e.Module)
		existing, found := byModule[key]
		// A denying duplicate wins over an allowing one.
		if found && !existing.Visible {
			continue
		}
		byModule[key] = e
	}
	return byModule
}

func (g *Guard) logUnmapped(requestPath string) {
	path := cleanRequestPath(requestPath)
	if _, loaded := g.unmappedSeen.LoadOrStore(path, struct{}{}); loaded {
		return
	}
	g.logger.Warn("authz: unmapped path denied", slog.String("path", path))
}

func (g *Guard) observe(module string, allowed bool) bool {
	g.metrics.Decision(module, allowed)
	return allowed
}
