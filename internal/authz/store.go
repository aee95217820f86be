package authz

import (
	"context"

	"github.com/google/uuid"
)

// Assignment ties a stored role value to an optional tenant scope. Role keeps
// the raw stored spelling; normalization happens at resolution time so domain
// profiles can still match historical values.
type Assignment struct {
	Role     string
	TenantID *uuid.UUID
}

// PreviewSession is a privileged user's temporary self-imposed role downgrade.
type PreviewSession struct {
	UserID       int64
	OriginalRole string
	PreviewRole  Role
	Active       bool
}

// ImpersonationSession scopes an operator to a single tenant's data.
type ImpersonationSession struct {
	UserID   int64
	TenantID uuid.UUID
	Active   bool
}

// MatrixEntry is one externally maintained (role, module) permission row.
type MatrixEntry struct {
	Role    string
	Module  string
	Visible bool
	Actions []string
}

// Store is the read surface the resolver and guard consume. Absence of data
// is reported as nil/empty, never as an error.
type Store interface {
	RoleAssignments(ctx context.Context, userID int64) ([]Assignment, error)
	ActivePreview(ctx context.Context, userID int64) (*PreviewSession, error)
	ActiveImpersonation(ctx context.Context, userID int64) (*ImpersonationSession, error)
	MatrixSource
}

// MatrixSource serves permission matrix rows for one role.
type MatrixSource interface {
	MatrixEntries(ctx context.Context, role Role) ([]MatrixEntry, error)
}

// SessionStore extends Store with the only mutations the core performs:
// activating and clearing preview and impersonation sessions.
type SessionStore interface {
	Store
	UpsertPreview(ctx context.Context, userID int64, originalRole string, preview Role) error
	ClearPreview(ctx context.Context, userID int64) error
	UpsertImpersonation(ctx context.Context, userID int64, tenantID uuid.UUID) error
	ClearImpersonation(ctx context.Context, userID int64) error
}
