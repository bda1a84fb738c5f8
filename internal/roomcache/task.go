package roomcache

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// TaskTypeRefresh identifies the periodic room-list refresh task.
const TaskTypeRefresh = "roomcache:refresh"

// NewRefreshTask builds the asynq task enqueued by the scheduler.
func NewRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeRefresh, nil)
}

// TaskHandler processes TaskTypeRefresh tasks by delegating to Cache.Refresh.
type TaskHandler struct {
	cache *Cache
}

// NewTaskHandler constructs a TaskHandler bound to cache.
func NewTaskHandler(cache *Cache) *TaskHandler {
	return &TaskHandler{cache: cache}
}

// ProcessTask implements asynq.Handler.
func (h *TaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if task.Type() != TaskTypeRefresh {
		return nil
	}
	return h.cache.Refresh(ctx)
}

// RegisterSchedule registers the periodic refresh on scheduler using a
// standard cron spec (e.g. "*/5 * * * *" for every five minutes). The spec
// is validated up front so a typo surfaces at startup, not at the first
// missed refresh.
func RegisterSchedule(scheduler *asynq.Scheduler, cronSpec string) error {
	if _, err := cron.ParseStandard(cronSpec); err != nil {
		return err
	}
	_, err := scheduler.Register(cronSpec, NewRefreshTask())
	return err
}
