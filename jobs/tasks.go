package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup recomputes the dashboard into the report cache.
	TaskDashboardWarmup = "dashboard:warmup"

	// warmupDedupWindow collapses bursts of writes into one warmup.
	warmupDedupWindow = 30 * time.Second
)

// DashboardWarmupPayload records why a warmup was requested.
type DashboardWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
