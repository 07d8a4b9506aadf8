package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

// Store persists session records: serialized user snapshots keyed by user ID.
// A record exists while the user has a live session; deleting it is how
// logout and account deletion retroactively deny otherwise-valid tokens.
type Store interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	// Update rewrites an existing record and is a no-op when none exists.
	// Only Set (login) may create a record; anything else re-creating one
	// would undo a logout.
	Update(ctx context.Context, user *domain.User, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}

// keyPrefix namespaces session keys in the shared Redis instance.
const keyPrefix = "session:"

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads the session record for the given user ID.
// Returns an error wrapping apperrors.ErrNotFound if no record exists.
func (s *RedisStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	raw, err := s.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session %s: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("get session %s: %w", userID, err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}

	return &user, nil
}

// Set writes the session record, overwriting any prior one for the same user.
func (s *RedisStore) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", user.ID, err)
	}

	if err := s.client.Set(ctx, keyPrefix+user.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", user.ID, err)
	}

	return nil
}

// Update rewrites the session record only if one exists (SET XX). A missing
// record means the user has no live session; none is created.
func (s *RedisStore) Update(ctx context.Context, user *domain.User, ttl time.Duration) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", user.ID, err)
	}

	if err := s.client.SetXX(ctx, keyPrefix+user.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("update session %s: %w", user.ID, err)
	}

	return nil
}

// Delete removes the session record for the given user ID.
// Deleting a missing record is not an error.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}
