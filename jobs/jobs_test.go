package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/newhope/newhope-admin/internal/jobs"
)

type warmerFunc func(ctx context.Context) error

func (f warmerFunc) Warm(ctx context.Context) error { return f(ctx) }

type recordingCache struct {
	reasons []string
	err     error
}

func (c *recordingCache) InvalidateReports(ctx context.Context, reason string) error {
	c.reasons = append(c.reasons, reason)
	return c.err
}

type recordingQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *recordingQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	if q.err != nil {
		return nil, q.err
	}
	return &asynq.TaskInfo{Queue: QueueDefault, Type: task.Type()}, nil
}

func TestDashboardWarmupJobHandle(t *testing.T) {
	calls := 0
	job := NewDashboardWarmupJob(warmerFunc(func(ctx context.Context) error {
		calls++
		return nil
	}), nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewDashboardWarmupTask(DashboardWarmupPayload{Reason: "orders.status"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)); err != nil {
		t.Fatalf("handle scheduled: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 warmups, got %d", calls)
	}
}

func TestDashboardWarmupJobRejectsBadPayload(t *testing.T) {
	job := NewDashboardWarmupJob(warmerFunc(func(ctx context.Context) error { return nil }), nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestDashboardWarmupJobPropagatesFailure(t *testing.T) {
	boom := errors.New("store down")
	job := NewDashboardWarmupJob(warmerFunc(func(ctx context.Context) error { return boom }), nil, nil)
	if err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	var unset *DashboardWarmupJob
	if err := unset.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, nil)); err == nil {
		t.Fatalf("expected error for unconfigured job")
	}
}

func TestQueueInvalidatorBumpsThenEnqueues(t *testing.T) {
	cache := &recordingCache{}
	queue := &recordingQueue{}
	inv := NewQueueInvalidator(cache, queue, nil, nil)

	if err := inv.InvalidateReports(context.Background(), "products.update"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if len(cache.reasons) != 1 || cache.reasons[0] != "products.update" {
		t.Fatalf("cache not invalidated: %v", cache.reasons)
	}
	if len(queue.tasks) != 1 || queue.tasks[0].Type() != TaskDashboardWarmup {
		t.Fatalf("warmup not enqueued: %v", queue.tasks)
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(queue.tasks[0].Payload(), &payload); err != nil || payload.Reason != "products.update" {
		t.Fatalf("unexpected payload %s (%v)", queue.tasks[0].Payload(), err)
	}
}

func TestQueueInvalidatorToleratesQueueErrors(t *testing.T) {
	cache := &recordingCache{}
	inv := NewQueueInvalidator(cache, &recordingQueue{err: asynq.ErrDuplicateTask}, nil, nil)
	if err := inv.InvalidateReports(context.Background(), "x"); err != nil {
		t.Fatalf("duplicate task must be ignored: %v", err)
	}
	inv = NewQueueInvalidator(cache, &recordingQueue{err: errors.New("redis down")}, nil, nil)
	if err := inv.InvalidateReports(context.Background(), "x"); err != nil {
		t.Fatalf("queue failure must not fail the write: %v", err)
	}

	failing := NewQueueInvalidator(&recordingCache{err: errors.New("bump failed")}, nil, nil, nil)
	if err := failing.InvalidateReports(context.Background(), "x"); err == nil {
		t.Fatalf("cache failure must surface")
	}
	if err := NewQueueInvalidator(nil, nil, nil, nil).InvalidateReports(context.Background(), "x"); err != nil {
		t.Fatalf("bare invalidator: %v", err)
	}
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"no inspector", nil, http.StatusOK, 0},
		{"queue info", stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3}}, http.StatusOK, 3},
		{"redis down", stubInspector{err: errors.New("dial")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rr.Code != tc.status {
				t.Fatalf("status %d, want %d", rr.Code, tc.status)
			}
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Pending != tc.pending || body.Queue != QueueDefault {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}
