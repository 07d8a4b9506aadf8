package repository

import (
	"context"
	"time"

	"github.com/Bobby-coder/CodeNation/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// NotificationRepository defines the persistence operations the cleanup
// sweep needs. Notification CRUD itself is ordinary data-mapping handled
// elsewhere.
type NotificationRepository interface {
	// DeleteReadBefore removes notifications marked read whose creation
	// time is before the cutoff. Returns the number of rows removed.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
