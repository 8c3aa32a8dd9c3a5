// Package tasks implements the cron-driven housekeeping tasks of notebot.
package tasks

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/notebot/internal/config"
)

// MaintenanceStore is the database surface the tasks work on.
type MaintenanceStore interface {
	PruneDeliveries(ctx context.Context, before string) (int64, error)
	RunSQLMaintenance(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  MaintenanceStore
	Config *config.Config
	Clock  clockwork.Clock
}
