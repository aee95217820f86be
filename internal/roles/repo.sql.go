package roles

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListAssignments returns one page of role assignments plus the total count.
func (r *Repository) ListAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM role_assignments`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT user_id, role, tenant_id, updated_at
		FROM role_assignments
		ORDER BY user_id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.UserID, &a.Role, &a.TenantID, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// UpsertAssignment stores the role for a user, replacing any previous one.
func (r *Repository) UpsertAssignment(ctx context.Context, userID int64, role string, tenantID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_assignments (user_id, role, tenant_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id)
		DO UPDATE SET role = EXCLUDED.role, tenant_id = EXCLUDED.tenant_id, updated_at = now()`,
		userID, role, tenantID)
	return err
}

// DeleteAssignment removes the stored role for a user.
func (r *Repository) DeleteAssignment(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_assignments WHERE user_id = $1`, userID)
	return err
}
