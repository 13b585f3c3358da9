package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/newhope/newhope-admin/internal/jobs"
	"github.com/newhope/newhope-admin/internal/shared"
)

// Enqueuer is satisfied by *asynq.Client and *Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueInvalidator drops cached reports right away and asks the worker to
// rebuild them. Without a queue it only drops them; the next dashboard view
// recomputes.
type QueueInvalidator struct {
	cache   shared.ReportInvalidator
	queue   Enqueuer
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewQueueInvalidator builds the invalidator. cache and queue may be nil.
func NewQueueInvalidator(cache shared.ReportInvalidator, queue Enqueuer, metrics *jobmetrics.Metrics, logger *slog.Logger) *QueueInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueInvalidator{cache: cache, queue: queue, metrics: metrics, logger: logger}
}

// InvalidateReports implements shared.ReportInvalidator.
func (q *QueueInvalidator) InvalidateReports(ctx context.Context, reason string) error {
	q.metrics.AddInvalidation(reason)
	if q.cache != nil {
		if err := q.cache.InvalidateReports(ctx, reason); err != nil {
			return err
		}
	}
	if q.queue == nil {
		return nil
	}
	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Reason: reason})
	if err != nil {
		return err
	}
	_, err = q.queue.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Unique(warmupDedupWindow))
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		// the cache is already invalidated; a missed warmup only costs latency
		q.logger.Warn("enqueue dashboard warmup", slog.String("reason", reason), slog.Any("error", err))
	}
	return nil
}
