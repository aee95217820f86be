package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hr/meridian/internal/authz"
	jobmetrics "github.com/meridian-hr/meridian/internal/jobs"
)

const defaultRoleAuditLimit = 1000

// RoleAuditJob scans stored role assignments and reports values that are not
// part of the canonical role set. Such rows still resolve to a safe role at
// request time, but they indicate drift in whatever system writes assignments.
type RoleAuditJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRoleAuditJob wires dependencies for the audit handler.
func NewRoleAuditJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *RoleAuditJob {
	return &RoleAuditJob{Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle processes role audit tasks.
func (j *RoleAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("role audit: handler not configured")
	}
	var payload RoleAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultRoleAuditLimit
	}

	tracker := j.metrics().Track(TaskRoleAudit)
	var resultErr error
	defer func() {
		tracker.End(resultErr)
	}()

	rows, err := j.Pool.Query(ctx, `
		SELECT user_id, role
		FROM role_assignments
		ORDER BY user_id
		LIMIT $1`, payload.Limit)
	if err != nil {
		resultErr = err
		return resultErr
	}
	defer rows.Close()

	unknown := 0
	synonyms := 0
	for rows.Next() {
		var userID int64
		var raw string
		if err := rows.Scan(&userID, &raw); err != nil {
			resultErr = err
			return resultErr
		}
		if authz.IsCanonical(authz.Role(raw)) {
			continue
		}
		role, known := authz.NormalizeKnown(raw)
		if known {
			synonyms++
			continue
		}
		unknown++
		j.logger().Warn("unknown role assignment",
			slog.Int64("user_id", userID),
			slog.String("raw_role", raw),
			slog.String("resolved_role", string(role)))
	}
	if err := rows.Err(); err != nil {
		resultErr = err
		return resultErr
	}

	j.metrics().AddFindings("synonym", synonyms)
	j.metrics().AddFindings("unknown", unknown)
	j.logger().Info("role audit completed",
		slog.Int("synonyms", synonyms),
		slog.Int("unknown", unknown))
	return nil
}

func (j *RoleAuditJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RoleAuditJob) logger() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
