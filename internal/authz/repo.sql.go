package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore provides PostgreSQL backed persistence for the authorization core.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a store on top of the shared pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// RoleAssignments returns every assignment held by the user, oldest first.
func (s *PGStore) RoleAssignments(ctx context.Context, userID int64) ([]Assignment, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, tenant_id FROM role_assignments WHERE user_id=$1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.Role, &a.TenantID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ActivePreview returns the user's active preview session, or nil.
func (s *PGStore) ActivePreview(ctx context.Context, userID int64) (*PreviewSession, error) {
	var sess PreviewSession
	var preview string
	err := s.pool.QueryRow(ctx, `SELECT user_id, original_role, preview_role FROM preview_sessions WHERE user_id=$1 AND active`, userID).
		Scan(&sess.UserID, &sess.OriginalRole, &preview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sess.PreviewRole = Role(preview)
	sess.Active = true
	return &sess, nil
}

// ActiveImpersonation returns the user's active impersonation session, or nil.
func (s *PGStore) ActiveImpersonation(ctx context.Context, userID int64) (*ImpersonationSession, error) {
	var sess ImpersonationSession
	err := s.pool.QueryRow(ctx, `SELECT user_id, tenant_id FROM impersonation_sessions WHERE user_id=$1 AND active`, userID).
		Scan(&sess.UserID, &sess.TenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sess.Active = true
	return &sess, nil
}

// MatrixEntries returns all matrix rows configured for the role.
func (s *PGStore) MatrixEntries(ctx context.Context, role Role) ([]MatrixEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, module_name, is_visible, allowed_actions FROM permission_matrix WHERE role=$1`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []MatrixEntry
	for rows.Next() {
		var e MatrixEntry
		if err := rows.Scan(&e.Role, &e.Module, &e.Visible, &e.Actions); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertPreview activates a preview session, replacing any existing one. A
// reader sees either the previous or the new row, never a mix.
func (s *PGStore) UpsertPreview(ctx context.Context, userID int64, originalRole string, preview Role) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO preview_sessions (user_id, original_role, preview_role, active, started_at)
VALUES ($1, $2, $3, TRUE, NOW())
ON CONFLICT (user_id) DO UPDATE SET original_role=$2, preview_role=$3, active=TRUE, started_at=NOW()`,
		userID, originalRole, string(preview))
	return err
}

// ClearPreview deactivates the user's preview session if one exists.
func (s *PGStore) ClearPreview(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE preview_sessions SET active=FALSE WHERE user_id=$1`, userID)
	return err
}

// UpsertImpersonation activates a tenant impersonation session.
func (s *PGStore) UpsertImpersonation(ctx context.Context, userID int64, tenantID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO impersonation_sessions (user_id, tenant_id, active, started_at)
VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (user_id) DO UPDATE SET tenant_id=$2, active=TRUE, started_at=NOW()`,
		userID, tenantID)
	return err
}

// ClearImpersonation deactivates the user's impersonation session.
func (s *PGStore) ClearImpersonation(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE impersonation_sessions SET active=FALSE WHERE user_id=$1`, userID)
	return err
}

var _ SessionStore = (*PGStore)(nil)
