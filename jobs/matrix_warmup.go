package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridian-hr/meridian/internal/authz"
	jobmetrics "github.com/meridian-hr/meridian/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// MatrixWarmupJob refreshes the cached permission matrix for every canonical role.
type MatrixWarmupJob struct {
	Cache   *authz.CachedMatrix
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMatrixWarmupJob wires dependencies for the warmup handler.
func NewMatrixWarmupJob(cache *authz.CachedMatrix, logger *slog.Logger, metrics *jobmetrics.Metrics) *MatrixWarmupJob {
	return &MatrixWarmupJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes matrix warmup tasks.
func (j *MatrixWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("matrix warmup: handler not configured")
	}
	var payload MatrixWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskMatrixWarmup)
	var resultErr error
	defer func() {
		tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}

	if resultErr = j.Cache.Warm(ctx); resultErr != nil {
		logger.Error("matrix warmup failed", slog.Any("error", resultErr))
		return resultErr
	}
	logger.Info("matrix warmup completed")
	return nil
}

func (j *MatrixWarmupJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MatrixWarmupJob) logger() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
