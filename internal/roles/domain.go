package roles

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a stored role assignment for one user.
type Assignment struct {
	UserID    int64
	Role      string
	TenantID  *uuid.UUID
	UpdatedAt time.Time
}

// RoleInfo describes one canonical role and the raw values that map onto it.
type RoleInfo struct {
	Name     string   `json:"name"`
	Synonyms []string `json:"synonyms,omitempty"`
}
