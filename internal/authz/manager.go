package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/meridian-hr/meridian/internal/shared"
)

var (
	// ErrNotPermitted is returned when the acting identity's original role
	// does not satisfy a mutation precondition.
	ErrNotPermitted = errors.New("authz: original role must be superadmin")
	// ErrUnknownRole is returned for a preview role outside the canonical set.
	ErrUnknownRole = errors.New("authz: preview role not in canonical set")
	// ErrTenantRequired is returned when impersonation is requested without a tenant.
	ErrTenantRequired = errors.New("authz: tenant id required")
)

// AuditSink records session mutations; satisfied by shared.AuditLogger.
type AuditSink interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Manager is the only mutator of resolution state. It activates and clears
// preview and impersonation sessions, and invalidates the acting user's
// cached resolution so the very next check observes the new state.
type Manager struct {
	store    SessionStore
	resolver *Resolver
	audit    AuditSink
	logger   *slog.Logger
}

// NewManager constructs a session Manager. audit may be nil.
func NewManager(store SessionStore, resolver *Resolver, audit AuditSink, logger *slog.Logger) *Manager {
	return &Manager{store: store, resolver: resolver, audit: audit, logger: logger}
}

// ActivatePreview lets a superadmin see the system as a lesser role. The
// precondition is evaluated against the original, non-overridden identity,
// so an already-previewing superadmin can switch roles but a previewed-down
// session can never elevate anyone.
func (m *Manager) ActivatePreview(ctx context.Context, userID int64, role Role) error {
	original, err := m.originalRole(ctx, userID)
	if err != nil {
		return err
	}
	if original != RoleSuperadmin {
		return ErrNotPermitted
	}
	if !IsCanonical(role) {
		return ErrUnknownRole
	}
	if err := m.store.UpsertPreview(ctx, userID, string(original), role); err != nil {
		return fmt.Errorf("authz: activate preview: %w", err)
	}
	m.resolver.Invalidate(userID)
	m.recordAudit(ctx, userID, shared.AuditPreviewActivated, map[string]any{"preview_role": string(role)})
	return nil
}

// DeactivatePreview clears any active preview session. Clearing an inactive
// session is a no-op, not an error.
func (m *Manager) DeactivatePreview(ctx context.Context, userID int64) error {
	if err := m.store.ClearPreview(ctx, userID); err != nil {
		return fmt.Errorf("authz: clear preview: %w", err)
	}
	m.resolver.Invalidate(userID)
	m.recordAudit(ctx, userID, shared.AuditPreviewCleared, nil)
	return nil
}

// ActivateImpersonation scopes a superadmin's view to one tenant.
func (m *Manager) ActivateImpersonation(ctx context.Context, userID int64, tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return ErrTenantRequired
	}
	original, err := m.originalRole(ctx, userID)
	if err != nil {
		return err
	}
	if original != RoleSuperadmin {
		return ErrNotPermitted
	}
	if err := m.store.UpsertImpersonation(ctx, userID, tenantID); err != nil {
		return fmt.Errorf("authz: activate impersonation: %w", err)
	}
	m.resolver.Invalidate(userID)
	m.recordAudit(ctx, userID, shared.AuditImpersonationActivated, map[string]any{"tenant_id": tenantID.String()})
	return nil
}

// DeactivateImpersonation clears any active impersonation session.
func (m *Manager) DeactivateImpersonation(ctx context.Context, userID int64) error {
	if err := m.store.ClearImpersonation(ctx, userID); err != nil {
		return fmt.Errorf("authz: clear impersonation: %w", err)
	}
	m.resolver.Invalidate(userID)
	m.recordAudit(ctx, userID, shared.AuditImpersonationCleared, nil)
	return nil
}

// originalRole computes the pre-override role from direct assignments only.
// Unlike resolution reads, a failed read here surfaces as an error: granting
// a mutation on unverifiable identity would be the unsafe direction.
func (m *Manager) originalRole(ctx context.Context, userID int64) (Role, error) {
	assignments, err := m.store.RoleAssignments(ctx, userID)
	if err != nil {
		return RoleEmployee, fmt.Errorf("authz: read assignments: %w", err)
	}
	for _, a := range assignments {
		if a.TenantID == nil && Normalize(a.Role) == RoleSuperadmin {
			return RoleSuperadmin, nil
		}
	}
	if len(assignments) > 0 {
		return Normalize(assignments[0].Role), nil
	}
	return RoleEmployee, nil
}

func (m *Manager) recordAudit(ctx context.Context, userID int64, action string, meta map[string]any) {
	if m.audit == nil {
		return
	}
	log := shared.AuditLog{
		ActorID:  userID,
		Action:   action,
		Entity:   "authz_session",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	}
	if err := m.audit.Record(ctx, log); err != nil {
		m.logger.Warn("authz: record audit", slog.String("action", action), slog.Any("error", err))
	}
}
