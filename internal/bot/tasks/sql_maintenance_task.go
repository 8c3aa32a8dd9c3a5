package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/notebot/internal/config"
)

// newSQLMaintenanceTask creates the scheduled task function for running database maintenance.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskSQLMaintenance)

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled SQL maintenance task")
		start := deps.Clock.Now()

		err := deps.Store.RunSQLMaintenance(ctx)
		duration := deps.Clock.Since(start)
		if err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", duration)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled SQL maintenance task completed", "duration", duration)
		return nil
	}
}
