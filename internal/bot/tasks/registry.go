package tasks

import (
	"context"

	"github.com/rumdood/Moneo-sub002/internal/config"
)

// ScheduledTaskFunc defines the signature of every scheduled task.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns all scheduled tasks keyed by the name used in the
// scheduler section of the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks[config.JournalMaintenanceTask] = newJournalMaintenanceTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
