package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users with their role assignments attached. Both
// queries run in one transaction so the attached assignments match the user
// snapshot.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT id, email, name, is_active, created_at, updated_at FROM users ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		index := make(map[int64]int)
		for rows.Next() {
			var user User
			if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
				return err
			}
			index[user.ID] = len(users)
			users = append(users, user)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		assignRows, err := tx.Query(ctx, `SELECT user_id, role, tenant_id FROM role_assignments ORDER BY user_id, created_at, id`)
		if err != nil {
			return err
		}
		defer assignRows.Close()
		for assignRows.Next() {
			var userID int64
			var assignment RoleAssignment
			if err := assignRows.Scan(&userID, &assignment.Role, &assignment.TenantID); err != nil {
				return err
			}
			if i, ok := index[userID]; ok {
				users[i].Assignments = append(users[i].Assignments, assignment)
			}
		}
		return assignRows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

var _ RepositoryPort = (*Repository)(nil)
