package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_DeleteReadBefore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)
	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	n, err := repo.DeleteReadBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_DeleteReadBefore_NoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewNotificationRepository(mock)
	cutoff := time.Now().UTC()

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	n, err := repo.DeleteReadBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
