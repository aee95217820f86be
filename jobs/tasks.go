package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMatrixWarmup pre-populates the permission matrix cache.
	TaskMatrixWarmup = "authz:matrix_warmup"
	// TaskRoleAudit scans stored role assignments for unknown values.
	TaskRoleAudit = "authz:role_audit"
)

// MatrixWarmupPayload configures a matrix warmup run.
type MatrixWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewMatrixWarmupTask constructs an Asynq task for the warmup handler.
func NewMatrixWarmupTask(payload MatrixWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatrixWarmup, data), nil
}

// RoleAuditPayload configures a role audit run.
type RoleAuditPayload struct {
	Limit int `json:"limit,omitempty"`
}

// NewRoleAuditTask constructs an Asynq task for the role audit handler.
func NewRoleAuditTask(payload RoleAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoleAudit, data), nil
}

// EnqueueMatrixWarmup enqueues a matrix warmup task.
func (c *Client) EnqueueMatrixWarmup(ctx context.Context, payload MatrixWarmupPayload) (*asynq.TaskInfo, error) {
	task, err := NewMatrixWarmupTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueRoleAudit enqueues a role audit task.
func (c *Client) EnqueueRoleAudit(ctx context.Context, payload RoleAuditPayload) (*asynq.TaskInfo, error) {
	task, err := NewRoleAuditTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}
