package authz

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// impersonationFallbackRole is what an impersonating operator acts as when no
// assignment exists in the impersonated tenant. Deliberately admin, not
// employee: operators need baseline access to configure a fresh tenant.
const impersonationFallbackRole = RoleAdmin

// DefaultCacheTTL bounds how stale a cached resolution may be.
const DefaultCacheTTL = 30 * time.Second

type resolution struct {
	effective Role
	held      []string
	expires   time.Time
}

// Resolver computes the effective role for a user by applying, in strict
// order: active preview session, active tenant impersonation, direct
// assignment, fail-closed default. Resolutions are memoized for a bounded
// window; concurrent callers for one user share a single store round trip.
type Resolver struct {
	store   Store
	logger  *slog.Logger
	metrics Metrics
	ttl     time.Duration

	mu    sync.Mutex
	cache map[int64]resolution
	gen   uint64
	group singleflight.Group
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL overrides the resolution staleness window.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithMetrics attaches decision telemetry.
func WithMetrics(m Metrics) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewResolver constructs a Resolver.
func NewResolver(store Store, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:   store,
		logger:  logger,
		metrics: nopMetrics{},
		ttl:     DefaultCacheTTL,
		cache:   make(map[int64]resolution),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EffectiveRole returns the single role used for every authorization
// decision in the current interaction. It is total: any failure against the
// external store degrades toward the weakest applicable role.
func (r *Resolver) EffectiveRole(ctx context.Context, userID int64) Role {
	return r.resolve(ctx, userID).effective
}

// HeldRoles returns the precedence-ordered role values the user currently
// holds, raw spellings first, for domain profiles that recognize historical
// values the canonical set folds away.
func (r *Resolver) HeldRoles(ctx context.Context, userID int64) []string {
	held := r.resolve(ctx, userID).held
	out := make([]string, len(held))
	copy(out, held)
	return out
}

// Invalidate drops the cached resolution so the next check observes fresh
// session state. The session manager calls this after every mutation. The
// generation bump keeps a resolution already in flight from re-caching the
// pre-mutation state it read.
func (r *Resolver) Invalidate(userID int64) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.gen++
	r.mu.Unlock()
}

func (r *Resolver) resolve(ctx context.Context, userID int64) resolution {
	now := time.Now()
	r.mu.Lock()
	if cached, ok := r.cache[userID]; ok && now.Before(cached.expires) {
		r.mu.Unlock()
		r.metrics.ResolutionCacheHit()
		return cached
	}
	r.mu.Unlock()
	r.metrics.ResolutionCacheMiss()

	v, _, _ := r.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		r.mu.Lock()
		start := r.gen
		r.mu.Unlock()
		res := r.compute(ctx, userID)
		res.expires = time.Now().Add(r.ttl)
		r.mu.Lock()
		if r.gen == start {
			r.cache[userID] = res
		}
		r.mu.Unlock()
		return res, nil
	})
	return v.(resolution)
}

// compute walks the precedence chain. Every read failure is treated as "no
// data found" at that step and falls through to the next one.
func (r *Resolver) compute(ctx context.Context, userID int64) resolution {
	if preview := r.activePreview(ctx, userID); preview != nil {
		role := r.normalizeObserved(string(preview.PreviewRole), userID)
		return resolution{effective: role, held: []string{string(role)}}
	}

	assignments := r.assignments(ctx, userID)

	if imp := r.activeImpersonation(ctx, userID); imp != nil {
		return r.resolveImpersonated(userID, imp, assignments)
	}

	if len(assignments) > 0 {
		effective := r.normalizeObserved(assignments[0].Role, userID)
		return resolution{effective: effective, held: heldValues(assignments)}
	}

	return resolution{effective: RoleEmployee, held: []string{string(RoleEmployee)}}
}

func (r *Resolver) resolveImpersonated(userID int64, imp *ImpersonationSession, assignments []Assignment) resolution {
	// A true superadmin is never demoted by entering a tenant scope.
	for _, a := range assignments {
		if a.TenantID == nil && Normalize(a.Role) == RoleSuperadmin {
			return resolution{effective: RoleSuperadmin, held: []string{string(RoleSuperadmin)}}
		}
	}
	if a := tenantAssignment(assignments, imp.TenantID); a != nil {
		role := r.normalizeObserved(a.Role, userID)
		return resolution{effective: role, held: heldValues([]Assignment{*a})}
	}
	return resolution{
		effective: impersonationFallbackRole,
		held:      []string{string(impersonationFallbackRole)},
	}
}

func (r *Resolver) activePreview(ctx context.Context, userID int64) *PreviewSession {
	sess, err := r.store.ActivePreview(ctx, userID)
	if err != nil {
		r.logger.Warn("authz: read preview session", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil
	}
	if sess == nil || !sess.Active {
		return nil
	}
	return sess
}

func (r *Resolver) activeImpersonation(ctx context.Context, userID int64) *ImpersonationSession {
	sess, err := r.store.ActiveImpersonation(ctx, userID)
	if err != nil {
		r.logger.Warn("authz: read impersonation session", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil
	}
	if sess == nil || !sess.Active {
		return nil
	}
	return sess
}

func (r *Resolver) assignments(ctx context.Context, userID int64) []Assignment {
	assignments, err := r.store.RoleAssignments(ctx, userID)
	if err != nil {
		r.logger.Warn("authz: read role assignments", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil
	}
	return assignments
}

func (r *Resolver) normalizeObserved(raw string, userID int64) Role {
	role, known := NormalizeKnown(raw)
	if !known {
		r.metrics.RoleCoerced()
		r.logger.Warn("authz: unknown role coerced",
			slog.String("raw", raw),
			slog.String("coerced_to", string(role)),
			slog.Int64("user_id", userID))
	}
	return role
}

func tenantAssignment(assignments []Assignment, tenantID uuid.UUID) *Assignment {
	for i := range assignments {
		if assignments[i].TenantID != nil && *assignments[i].TenantID == tenantID {
			return &assignments[i]
		}
	}
	return nil
}

// heldValues flattens assignments into folded raw values plus their
// canonical forms, order preserved, deduplicated. Values listed in
// domainRoles stay unfolded: appending "hr_admin" next to a bare "hr" would
// let the canonical entry shadow the profile's weaker first-class row.
func heldValues(assignments []Assignment) []string {
	seen := make(map[string]struct{}, len(assignments)*2)
	held := make([]string, 0, len(assignments)*2)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		held = append(held, v)
	}
	for _, a := range assignments {
		key := NormalizeKey(a.Role)
		add(key)
		if _, ok := domainRoles[key]; ok {
			continue
		}
		add(string(Normalize(a.Role)))
	}
	if len(held) == 0 {
		held = append(held, string(RoleEmployee))
	}
	return held
}
