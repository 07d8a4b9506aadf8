package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Bobby-coder/CodeNation/pkg/database"
)

// NotificationRepository implements repository.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	pool database.DBTX
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool database.DBTX) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// DeleteReadBefore removes notifications marked read that were created before
// the cutoff time. It returns the number of rows removed.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE status = 'read' AND created_at < $1`

	ct, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}

	return ct.RowsAffected(), nil
}
