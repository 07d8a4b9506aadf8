package worker

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingNotificationRepo struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (r *recordingNotificationRepo) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.cutoffs = append(r.cutoffs, cutoff)
	return 3, nil
}

func (r *recordingNotificationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cutoffs)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNotificationCleanup_SweepUsesRetentionCutoff(t *testing.T) {
	repo := &recordingNotificationRepo{}
	c := NewNotificationCleanup(repo, time.Hour, 30*24*time.Hour, testLogger())

	before := time.Now().UTC().Add(-30 * 24 * time.Hour)
	c.sweep(context.Background())
	after := time.Now().UTC().Add(-30 * 24 * time.Hour)

	assert.Equal(t, 1, repo.count())
	cutoff := repo.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestNotificationCleanup_RunStopsOnCancel(t *testing.T) {
	repo := &recordingNotificationRepo{}
	c := NewNotificationCleanup(repo, 5*time.Millisecond, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop after cancel")
	}

	assert.Greater(t, repo.count(), 0)
}

func TestNotificationCleanup_SweepErrorDoesNotPanic(t *testing.T) {
	repo := &recordingNotificationRepo{err: assert.AnError}
	c := NewNotificationCleanup(repo, time.Hour, time.Hour, testLogger())

	c.sweep(context.Background())
	assert.Equal(t, 0, repo.count())
}
