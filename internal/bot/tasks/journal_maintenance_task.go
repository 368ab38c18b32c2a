package tasks

import (
	"context"
	"fmt"
	"time"
)

// newJournalMaintenanceTask prunes journal entries older than the configured
// retention and then compacts the database file.
func newJournalMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "journal_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting journal maintenance")
		startTime := time.Now()

		cutoff := deps.now().Add(-deps.Config.Journal.Retention)
		pruned, err := deps.Store.PruneEntriesBefore(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Journal pruning failed", "error", err, "cutoff", cutoff)
			return fmt.Errorf("journal pruning failed: %w", err)
		}

		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Journal maintenance completed", "pruned", pruned, "duration", time.Since(startTime))
		return nil
	}
}
