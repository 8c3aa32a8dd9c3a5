package tasks

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/config"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every task keyed by the name used under
// scheduler.tasks in the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	tasks := make(map[string]ScheduledTaskFunc)
	tasks[config.TaskJournalPrune] = newJournalPruneTask(deps)
	tasks[config.TaskSQLMaintenance] = newSQLMaintenanceTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
