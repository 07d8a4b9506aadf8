// Package worker holds the out-of-band periodic jobs. They run independently
// of live traffic and never touch sessions or tokens.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Bobby-coder/CodeNation/internal/repository"
)

// NotificationCleanup periodically deletes notifications that were read more
// than a retention period ago.
type NotificationCleanup struct {
	repo      repository.NotificationRepository
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewNotificationCleanup creates the cleanup job.
func NewNotificationCleanup(repo repository.NotificationRepository, interval, retention time.Duration, logger *slog.Logger) *NotificationCleanup {
	return &NotificationCleanup{
		repo:      repo,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Run sweeps on a ticker until the context is cancelled. Sweep failures are
// logged and the loop continues; they are not user-facing.
func (c *NotificationCleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *NotificationCleanup) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-c.retention)

	deleted, err := c.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		c.logger.ErrorContext(ctx, "notification cleanup error", slog.String("error", err.Error()))
		return
	}

	if deleted > 0 {
		c.logger.InfoContext(ctx, "read notifications cleaned",
			slog.Int64("deleted", deleted),
			slog.Time("cutoff", cutoff),
		)
	}
}
