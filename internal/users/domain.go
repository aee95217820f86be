package users

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user account for management.
type User struct {
	ID          int64
	Email       string
	Name        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Assignments []RoleAssignment
}

// RoleAssignment is a stored role grant, optionally scoped to a tenant.
type RoleAssignment struct {
	Role     string
	TenantID *uuid.UUID
}
