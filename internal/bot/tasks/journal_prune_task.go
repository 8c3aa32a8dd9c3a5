package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/notebot/internal/config"
	"github.com/edgard/notebot/internal/database"
)

// newJournalPruneTask removes delivery journal records older than the
// configured retention.
func newJournalPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", config.TaskJournalPrune)

	return func(ctx context.Context) error {
		retention := deps.Config.Database.JournalRetentionDays
		now := deps.Clock.Now().In(deps.Config.Scheduler.Location())
		cutoff := now.AddDate(0, 0, -retention).Format(database.DayLayout)

		removed, err := deps.Store.PruneDeliveries(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Journal prune failed", "error", err, "before", cutoff)
			return fmt.Errorf("journal prune failed: %w", err)
		}

		log.InfoContext(ctx, "Delivery journal pruned", "before", cutoff, "removed", removed)
		return nil
	}
}
