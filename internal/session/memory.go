package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

// MemoryStore is an in-process Store for tests and local development.
// It honors TTLs lazily: expired entries are dropped on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	user      domain.User
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get returns the stored snapshot, or an error wrapping apperrors.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, fmt.Errorf("session %s: %w", userID, apperrors.ErrNotFound)
	}

	user := entry.user
	return &user, nil
}

// Set stores a copy of the user snapshot under its ID.
func (s *MemoryStore) Set(_ context.Context, user *domain.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[user.ID] = memoryEntry{user: *user, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Update overwrites an existing, unexpired snapshot. A missing or expired
// entry is left untouched so a logged-out user stays logged out.
func (s *MemoryStore) Update(_ context.Context, user *domain.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[user.ID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}

	s.entries[user.ID] = memoryEntry{user: *user, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Delete removes the snapshot for the given user ID.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
