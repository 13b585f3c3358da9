package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/newhope/newhope-admin/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer recomputes the dashboard and stores it in the report cache.
type Warmer interface {
	Warm(ctx context.Context) error
}

// DashboardWarmupJob keeps the cached dashboard fresh between writes.
type DashboardWarmupJob struct {
	Dashboard Warmer
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(dashboard Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Dashboard: dashboard, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "scheduled"
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	start := time.Now()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	if err := j.Dashboard.Warm(ctx); err != nil {
		logger.Error("dashboard warmup failed", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmed", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
