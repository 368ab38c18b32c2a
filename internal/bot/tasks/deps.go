// Package tasks implements the scheduled maintenance tasks of the bot.
package tasks

import (
	"log/slog"
	"time"

	"github.com/rumdood/Moneo-sub002/internal/config"
	"github.com/rumdood/Moneo-sub002/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
